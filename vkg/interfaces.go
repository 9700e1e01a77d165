package vkg

import (
	vk "github.com/vulkan-go/vulkan"
)

// IDestructable is anything owning Vulkan resources which must be released explicitly
type IDestructable interface {
	Destroy()
}

// Descriptor describes where a resource is bound for use by a shader
type Descriptor struct {
	Type        vk.DescriptorType
	ShaderStage vk.ShaderStageFlags
	Set         int
	Binding     int
}

// LayoutBinding converts the descriptor into a binding for a DescriptorSetLayout
func (d *Descriptor) LayoutBinding() vk.DescriptorSetLayoutBinding {
	return vk.DescriptorSetLayoutBinding{
		Binding:         uint32(d.Binding),
		DescriptorType:  d.Type,
		DescriptorCount: 1,
		StageFlags:      d.ShaderStage,
	}
}

type DescriptorBinder interface {
	Descriptor() *Descriptor
}

// ByteSourcer is any object which can provide a byte representation of itself
// for copying into a buffer
type ByteSourcer interface {
	Bytes() []byte
}

type IndexSourcer interface {
	ByteSourcer
	IndexType() vk.IndexType
}

// VertexDescriptor describes how vertex data is laid out for a graphics pipeline
type VertexDescriptor interface {
	GetBindingDescription() vk.VertexInputBindingDescription
	GetAttributeDescriptions() []vk.VertexInputAttributeDescription
}

type VertexSourcer interface {
	ByteSourcer
	VertexDescriptor
}

// UniformSourcer is a uniform buffer object
type UniformSourcer interface {
	ByteSourcer
	DescriptorBinder
}

// inferBufferUsage picks buffer usage bits from the interfaces src implements
func inferBufferUsage(src ByteSourcer) vk.BufferUsageFlagBits {
	var usage vk.BufferUsageFlagBits
	if _, ok := src.(VertexSourcer); ok {
		usage |= vk.BufferUsageVertexBufferBit
	}
	if _, ok := src.(IndexSourcer); ok {
		usage |= vk.BufferUsageIndexBufferBit
	}
	if _, ok := src.(UniformSourcer); ok {
		usage |= vk.BufferUsageUniformBufferBit
	}
	return usage
}
