package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestAddPoolSizeAccumulates(t *testing.T) {
	p := &DescriptorPool{}
	p.AddPoolSize(vk.DescriptorTypeUniformBuffer, 2)
	p.AddPoolSize(vk.DescriptorTypeCombinedImageSampler, 1)
	p.AddPoolSize(vk.DescriptorTypeUniformBuffer, 3)

	require.Len(t, p.VKDescriptorPoolSize, 2)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, p.VKDescriptorPoolSize[0].Type)
	assert.EqualValues(t, 5, p.VKDescriptorPoolSize[0].DescriptorCount)
	assert.EqualValues(t, 1, p.VKDescriptorPoolSize[1].DescriptorCount)
}

func TestDescriptorSetQueuesWrites(t *testing.T) {
	ds := &DescriptorSet{}
	b := &Buffer{Size: 64}
	ds.AddBuffer(0, vk.DescriptorTypeUniformBuffer, b, 0)
	var view vk.ImageView
	var sampler vk.Sampler
	ds.AddCombinedImageSampler(1, vk.ImageLayoutShaderReadOnlyOptimal, view, sampler)

	require.Len(t, ds.VKWriteDiscriptorSet, 2)
	w := ds.VKWriteDiscriptorSet[0]
	assert.EqualValues(t, 0, w.DstBinding)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, w.DescriptorType)
	require.Len(t, w.PBufferInfo, 1)
	assert.EqualValues(t, 64, w.PBufferInfo[0].Range)

	w = ds.VKWriteDiscriptorSet[1]
	assert.EqualValues(t, 1, w.DstBinding)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, w.DescriptorType)
	require.Len(t, w.PImageInfo, 1)
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, w.PImageInfo[0].ImageLayout)
}

func TestDescriptorSetLayoutAddDescriptor(t *testing.T) {
	l := &DescriptorSetLayout{}
	l.AddDescriptor(&Descriptor{
		Type:        vk.DescriptorTypeStorageBuffer,
		ShaderStage: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		Binding:     3,
	})
	require.Len(t, l.VKDescriptorSetLayoutBindings, 1)
	b := l.VKDescriptorSetLayoutBindings[0]
	assert.EqualValues(t, 3, b.Binding)
	assert.EqualValues(t, 1, b.DescriptorCount)
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, b.DescriptorType)
}

func TestDescriptorPoolAddLayout(t *testing.T) {
	l := &DescriptorSetLayout{}
	l.AddDescriptor(&Descriptor{Type: vk.DescriptorTypeUniformBuffer, Binding: 0})
	l.AddDescriptor(&Descriptor{Type: vk.DescriptorTypeCombinedImageSampler, Binding: 1})

	p := &DescriptorPool{}
	p.AddLayout(l, 3)
	p.AddPoolSize(vk.DescriptorTypeUniformBuffer, 1)

	require.Len(t, p.VKDescriptorPoolSize, 2)
	assert.EqualValues(t, 4, p.VKDescriptorPoolSize[0].DescriptorCount)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, p.VKDescriptorPoolSize[1].Type)
	assert.EqualValues(t, 3, p.VKDescriptorPoolSize[1].DescriptorCount)
}

func TestDescriptorSetLayoutRejectsDuplicateBindings(t *testing.T) {
	l := &DescriptorSetLayout{}
	l.AddDescriptor(&Descriptor{Type: vk.DescriptorTypeUniformBuffer, Binding: 2})
	assert.NoError(t, l.checkBindings())

	l.AddDescriptor(&Descriptor{Type: vk.DescriptorTypeStorageBuffer, Binding: 2})
	assert.EqualError(t, l.checkBindings(), "binding 2 declared twice")
}
