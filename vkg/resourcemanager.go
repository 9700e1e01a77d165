package vkg

import (
	"github.com/cockroachdb/errors"
	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// StagingPoolName is the buffer pool used as the copy source for device local pools
const StagingPoolName = "staging"

// needsStaging reports whether memory with these properties can only be
// written through a staging copy
func needsStaging(mprops vk.MemoryPropertyFlagBits) bool {
	return mprops&vk.MemoryPropertyHostVisibleBit == 0
}

// ImageResourcePool is a single block of device memory images are sub-allocated from
type ImageResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.ImageUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

// BufferResourcePool is a single block of device memory buffers are sub-allocated from
type BufferResourcePool struct {
	Device           *Device
	Name             string
	Usage            vk.BufferUsageFlagBits
	Sharing          vk.SharingMode
	MemoryProperties vk.MemoryPropertyFlagBits
	Size             uint64
	Allocator        IAllocator
	Memory           *DeviceMemory
	NeedsStaging     bool
	ResourceManager  *ResourceManager
}

// AllocateImage creates an image and binds it to a free range of the pool
func (p *ImageResourcePool) AllocateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*ImageResource, error) {
	i, err := p.Device.CreateImageWithOptions(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	ar := i.AllocationRequirements()
	allocation := p.Allocator.Allocate(ar.Size, ar.Alignment)
	if allocation == nil {
		i.Destroy()
		return nil, errors.Wrapf(ErrInsufficientPoolSpace, "pool %q: image of %s", p.Name, units.BytesSize(float64(ar.Size)))
	}

	err = vk.Error(vk.BindImageMemory(p.Device.VKDevice, i.VKImage, p.Memory.VKDeviceMemory, vk.DeviceSize(allocation.Offset)))
	if err != nil {
		p.Allocator.Free(allocation)
		i.Destroy()
		return nil, errors.Wrap(err, "binding image memory")
	}

	img := &ImageResource{
		Image:        *i,
		Allocation:   allocation,
		ResourcePool: p,
	}
	allocation.Object = img
	return img, nil
}

func (p *ImageResourcePool) LogDetails() {
	log.WithFields(logrus.Fields{
		"pool": p.Name,
		"size": units.BytesSize(float64(p.Size)),
	}).Debug("image pool")
	p.Allocator.LogDetails()
}

func (p *ImageResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.imagePools, p.Name)
}

// AllocateFor allocates a buffer large enough for src with usage inferred from its type
func (p *BufferResourcePool) AllocateFor(src ByteSourcer) (*BufferResource, error) {
	usage := inferBufferUsage(src)
	if usage == 0 {
		return nil, errors.New("unknown buffer object type")
	}
	return p.AllocateBuffer(uint64(len(src.Bytes())), usage)
}

// AllocateBuffer creates a buffer and binds it to a free range of the pool
func (p *BufferResourcePool) AllocateBuffer(size uint64, usage vk.BufferUsageFlagBits) (*BufferResource, error) {
	if p.NeedsStaging {
		usage |= vk.BufferUsageTransferDstBit
	}
	buffer, err := p.Device.CreateBufferWithOptions(size, usage, p.Sharing)
	if err != nil {
		return nil, err
	}

	ar := buffer.AllocationRequirements()
	allocation := p.Allocator.Allocate(ar.Size, ar.Alignment)
	if allocation == nil {
		buffer.Destroy()
		return nil, errors.Wrapf(ErrInsufficientPoolSpace, "pool %q: buffer of %s", p.Name, units.BytesSize(float64(ar.Size)))
	}

	err = buffer.Bind(p.Memory, allocation.Offset)
	if err != nil {
		p.Allocator.Free(allocation)
		buffer.Destroy()
		return nil, errors.Wrap(err, "binding buffer memory")
	}

	ret := &BufferResource{
		Buffer:       *buffer,
		Allocation:   allocation,
		ResourcePool: p,
	}
	allocation.Object = ret
	return ret, nil
}

// Map maps the whole pool so that resources can expose their bytes
func (p *BufferResourcePool) Map() error {
	if p.NeedsStaging {
		return errors.Newf("pool %q is not host visible", p.Name)
	}
	_, err := p.Memory.Map()
	return err
}

func (p *BufferResourcePool) LogDetails() {
	log.WithFields(logrus.Fields{
		"pool":  p.Name,
		"size":  units.BytesSize(float64(p.Size)),
		"usage": usageToString(p.Usage),
	}).Debug("buffer pool")
	p.Allocator.LogDetails()
}

func (p *BufferResourcePool) Destroy() {
	if p.Allocator != nil {
		p.Allocator.DestroyContents()
		p.Allocator = nil
	}
	if p.Memory != nil {
		p.Memory.Destroy()
		p.Memory = nil
	}
	delete(p.ResourceManager.bufferPools, p.Name)
}

// ResourceManager owns named pools of device memory. Vulkan limits the number
// of memory allocations an application may make, so resources are
// sub-allocated from a few large pools instead.
type ResourceManager struct {
	Device      *Device
	bufferPools map[string]*BufferResourcePool
	imagePools  map[string]*ImageResourcePool
}

func (d *Device) CreateResourceManager() *ResourceManager {
	return &ResourceManager{
		Device:      d,
		bufferPools: make(map[string]*BufferResourcePool),
		imagePools:  make(map[string]*ImageResourcePool),
	}
}

func (r *ResourceManager) GetStagingPool() *BufferResourcePool {
	return r.bufferPools[StagingPoolName]
}

func (r *ResourceManager) HasStagingPool() bool {
	return r.bufferPools[StagingPoolName] != nil
}

// AllocateStagingPool creates the host visible pool used to upload into device local pools
func (r *ResourceManager) AllocateStagingPool(size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(StagingPoolName, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageTransferSrcBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateHostVertexAndIndexBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateDeviceVertexAndIndexBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyDeviceLocalBit, vk.BufferUsageVertexBufferBit|vk.BufferUsageIndexBufferBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateHostUniformBufferPool(name string, size uint64) (*BufferResourcePool, error) {
	return r.AllocateBufferPoolWithOptions(name, size, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit, vk.BufferUsageUniformBufferBit, vk.SharingModeExclusive)
}

// poolSize grows a requested pool size to what the driver reports for a
// resource of that size, so a single resource of the requested size still fits
func poolSize(requested uint64, ar *AllocationRequirements) uint64 {
	if ar != nil && ar.Size > requested {
		return ar.Size
	}
	return requested
}

func (r *ResourceManager) AllocateBufferPoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*BufferResourcePool, error) {
	if _, ok := r.bufferPools[name]; ok {
		return nil, errors.Newf("buffer pool %q already exists", name)
	}
	staging := needsStaging(mprops)
	if staging {
		usage |= vk.BufferUsageTransferDstBit
	}

	// a throwaway buffer with the pool's usage tells us which memory types are acceptable
	probe, err := r.Device.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, err
	}
	ar := probe.AllocationRequirements()
	probe.Destroy()
	size = poolSize(size, ar)

	memory, err := r.Device.Allocate(size, ar.MemoryTypeBits, mprops)
	if err != nil {
		return nil, errors.Wrapf(err, "allocating buffer pool %q", name)
	}

	p := &BufferResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		Memory:           memory,
		NeedsStaging:     staging,
		ResourceManager:  r,
	}
	r.bufferPools[name] = p
	return p, nil
}

func (r *ResourceManager) AllocateDeviceTexturePool(name string, size uint64) (*ImageResourcePool, error) {
	return r.AllocateImagePoolWithOptions(name, size, vk.MemoryPropertyDeviceLocalBit, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit, vk.SharingModeExclusive)
}

func (r *ResourceManager) AllocateImagePoolWithOptions(name string, size uint64, mprops vk.MemoryPropertyFlagBits, usage vk.ImageUsageFlagBits, sharing vk.SharingMode) (*ImageResourcePool, error) {
	if _, ok := r.imagePools[name]; ok {
		return nil, errors.Newf("image pool %q already exists", name)
	}
	staging := needsStaging(mprops)
	if staging {
		usage |= vk.ImageUsageTransferDstBit
	}

	probe, err := r.Device.CreateImageWithOptions(vk.Extent2D{Width: 16, Height: 16}, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, usage)
	if err != nil {
		return nil, err
	}
	ar := probe.AllocationRequirements()
	probe.Destroy()
	size = poolSize(size, ar)

	memory, err := r.Device.Allocate(size, ar.MemoryTypeBits, mprops)
	if err != nil {
		return nil, errors.Wrapf(err, "allocating image pool %q", name)
	}

	p := &ImageResourcePool{
		Device:           r.Device,
		Name:             name,
		Usage:            usage,
		Sharing:          sharing,
		MemoryProperties: mprops,
		Size:             size,
		Allocator:        &LinearAllocator{Size: size},
		Memory:           memory,
		NeedsStaging:     staging,
		ResourceManager:  r,
	}
	r.imagePools[name] = p
	return p, nil
}

// Destroy releases every pool and the resources still allocated from them
func (r *ResourceManager) Destroy() {
	for _, p := range r.bufferPools {
		if p.Name != StagingPoolName {
			p.Destroy()
		}
	}
	for _, p := range r.imagePools {
		p.Destroy()
	}
	if p := r.GetStagingPool(); p != nil {
		p.Destroy()
	}
}

func (r *ResourceManager) LogDetails() {
	for _, pool := range r.bufferPools {
		pool.LogDetails()
	}
	for _, pool := range r.imagePools {
		pool.LogDetails()
	}
}

