package vkg

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSet is a binding of resources to a descriptor, per a specific DescriptorSetLayout.
// Writes are queued with the Add methods and applied with Write.
type DescriptorSet struct {
	Device               *Device
	DescriptorPool       *DescriptorPool
	VKDescriptorSet      vk.DescriptorSet
	VKWriteDiscriptorSet []vk.WriteDescriptorSet
}

// AddBuffer queues a write of the whole buffer b to dstBinding
func (du *DescriptorSet) AddBuffer(dstBinding int, dtype vk.DescriptorType, b *Buffer, offset int) {
	du.VKWriteDiscriptorSet = append(du.VKWriteDiscriptorSet, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PBufferInfo:     []vk.DescriptorBufferInfo{b.DSInfo(offset)},
	})
}

// AddImage queues a write of an image, with an optional sampler, to dstBinding
func (du *DescriptorSet) AddImage(dstBinding int, dtype vk.DescriptorType, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	du.VKWriteDiscriptorSet = append(du.VKWriteDiscriptorSet, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      uint32(dstBinding),
		DescriptorCount: 1,
		DescriptorType:  dtype,
		PImageInfo: []vk.DescriptorImageInfo{{
			ImageView:   imageView,
			ImageLayout: layout,
			Sampler:     sampler,
		}},
	})
}

// AddCombinedImageSampler adds an image layout, image view and sampler to support displaying a texture
func (du *DescriptorSet) AddCombinedImageSampler(dstBinding int, layout vk.ImageLayout, imageView vk.ImageView, sampler vk.Sampler) {
	du.AddImage(dstBinding, vk.DescriptorTypeCombinedImageSampler, layout, imageView, sampler)
}

// Write applies the queued writes and clears the queue
func (du *DescriptorSet) Write() {
	if len(du.VKWriteDiscriptorSet) == 0 {
		return
	}
	for i := range du.VKWriteDiscriptorSet {
		du.VKWriteDiscriptorSet[i].DstSet = du.VKDescriptorSet
	}
	vk.UpdateDescriptorSets(du.Device.VKDevice, uint32(len(du.VKWriteDiscriptorSet)), du.VKWriteDiscriptorSet, 0, nil)
	du.VKWriteDiscriptorSet = nil
}
