package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout collects bindings until CreateDescriptorSetLayout turns
// them into a native layout
type DescriptorSetLayout struct {
	Device                        *Device
	VKDescriptorSetLayout         vk.DescriptorSetLayout
	VKDescriptorSetLayoutBindings []vk.DescriptorSetLayoutBinding
}

func (d *Device) NewDescriptorSetLayout() *DescriptorSetLayout {
	return &DescriptorSetLayout{Device: d}
}

func (l *DescriptorSetLayout) AddBinding(binding vk.DescriptorSetLayoutBinding) {
	l.VKDescriptorSetLayoutBindings = append(l.VKDescriptorSetLayoutBindings, binding)
}

// AddDescriptor adds the binding described by desc
func (l *DescriptorSetLayout) AddDescriptor(desc *Descriptor) {
	l.AddBinding(desc.LayoutBinding())
}

func (l *DescriptorSetLayout) checkBindings() error {
	seen := make(map[uint32]bool, len(l.VKDescriptorSetLayoutBindings))
	for _, b := range l.VKDescriptorSetLayoutBindings {
		if seen[b.Binding] {
			return errors.Newf("binding %d declared twice", b.Binding)
		}
		seen[b.Binding] = true
	}
	return nil
}

func (l *DescriptorSetLayout) Destroy() {
	if l.VKDescriptorSetLayout != vk.DescriptorSetLayout(vk.NullHandle) {
		vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
		l.VKDescriptorSetLayout = vk.DescriptorSetLayout(vk.NullHandle)
	}
}

// CreateDescriptorSetLayout creates the native layout for the bindings added
// to layout, binding numbers must be unique
func (d *Device) CreateDescriptorSetLayout(layout *DescriptorSetLayout) (*DescriptorSetLayout, error) {
	err := layout.checkBindings()
	if err != nil {
		return nil, err
	}
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layout.VKDescriptorSetLayoutBindings)),
		PBindings:    layout.VKDescriptorSetLayoutBindings,
	}

	var handle vk.DescriptorSetLayout
	err = vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, &createInfo, nil, &handle))
	if err != nil {
		return nil, errors.Wrapf(err, "creating descriptor set layout with %d bindings", len(layout.VKDescriptorSetLayoutBindings))
	}

	layout.Device = d
	layout.VKDescriptorSetLayout = handle
	return layout, nil
}
