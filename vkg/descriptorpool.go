package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorPool is the Vulkan pool descriptor sets are allocated from. Pool
// sizes are registered with AddPoolSize before the pool is created.
type DescriptorPool struct {
	Device               *Device
	VKDescriptorPool     vk.DescriptorPool
	VKDescriptorPoolSize []vk.DescriptorPoolSize
}

func (d *Device) NewDescriptorPool() *DescriptorPool {
	return &DescriptorPool{Device: d}
}

// AddPoolSize reserves count descriptors of dtype, repeated calls for the
// same type accumulate
func (d *DescriptorPool) AddPoolSize(dtype vk.DescriptorType, count int) {
	for i := range d.VKDescriptorPoolSize {
		if d.VKDescriptorPoolSize[i].Type == dtype {
			d.VKDescriptorPoolSize[i].DescriptorCount += uint32(count)
			return
		}
	}
	d.VKDescriptorPoolSize = append(d.VKDescriptorPoolSize, vk.DescriptorPoolSize{
		Type:            dtype,
		DescriptorCount: uint32(count),
	})
}

// AddLayout reserves the descriptors sets instances of layout l need
func (d *DescriptorPool) AddLayout(l *DescriptorSetLayout, sets int) {
	for _, b := range l.VKDescriptorSetLayoutBindings {
		d.AddPoolSize(b.DescriptorType, int(b.DescriptorCount)*sets)
	}
}

// CreateDescriptorPool creates the pool, sets allocated from it may be freed individually
func (d *Device) CreateDescriptorPool(pool *DescriptorPool, maxSets int) (*DescriptorPool, error) {
	if len(pool.VKDescriptorPoolSize) == 0 {
		return nil, errors.New("descriptor pool has no pool sizes")
	}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(maxSets),
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		PoolSizeCount: uint32(len(pool.VKDescriptorPoolSize)),
		PPoolSizes:    pool.VKDescriptorPoolSize,
	}

	var descriptorPool vk.DescriptorPool
	err := vk.Error(vk.CreateDescriptorPool(d.VKDevice, &createInfo, nil, &descriptorPool))
	if err != nil {
		return nil, errors.Wrapf(err, "creating descriptor pool for %d sets", maxSets)
	}

	pool.Device = d
	pool.VKDescriptorPool = descriptorPool
	return pool, nil
}

// Allocate allocates one descriptor set per layout
func (d *DescriptorPool) Allocate(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	if len(layouts) == 0 {
		return nil, nil
	}
	dsl := make([]vk.DescriptorSetLayout, len(layouts))
	for i, l := range layouts {
		dsl[i] = l.VKDescriptorSetLayout
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.VKDescriptorPool,
		DescriptorSetCount: uint32(len(dsl)),
		PSetLayouts:        dsl,
	}

	sets := make([]vk.DescriptorSet, len(dsl))
	err := vk.Error(vk.AllocateDescriptorSets(d.Device.VKDevice, &allocateInfo, &sets[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d descriptor sets", len(dsl))
	}

	ret := make([]*DescriptorSet, len(sets))
	for i := range sets {
		ret[i] = &DescriptorSet{
			Device:          d.Device,
			DescriptorPool:  d,
			VKDescriptorSet: sets[i],
		}
	}
	return ret, nil
}

// AllocateOne allocates a single descriptor set for layout
func (d *DescriptorPool) AllocateOne(layout *DescriptorSetLayout) (*DescriptorSet, error) {
	sets, err := d.Allocate(layout)
	if err != nil {
		return nil, err
	}
	return sets[0], nil
}

func (d *DescriptorPool) Reset() error {
	return vk.Error(vk.ResetDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, 0))
}

func (d *DescriptorPool) Free(ds *DescriptorSet) error {
	set := ds.VKDescriptorSet
	return vk.Error(vk.FreeDescriptorSets(d.Device.VKDevice, d.VKDescriptorPool, 1, &set))
}

func (d *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(d.Device.VKDevice, d.VKDescriptorPool, nil)
}
