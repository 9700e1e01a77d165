package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type PipelineLayout struct {
	Device           *Device
	VKPipelineLayout vk.PipelineLayout
}

func (p *PipelineLayout) Destroy() {
	if p.VKPipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.Device.VKDevice, p.VKPipelineLayout, nil)
		p.VKPipelineLayout = vk.NullPipelineLayout
	}
}

// PushConstantRange describes size bytes of push constants at offset visible to stages
func PushConstantRange(stages vk.ShaderStageFlagBits, offset, size int) vk.PushConstantRange {
	return vk.PushConstantRange{
		StageFlags: vk.ShaderStageFlags(stages),
		Offset:     uint32(offset),
		Size:       uint32(size),
	}
}

func (d *Device) CreatePipelineLayoutWithPushConstants(descriptorSetLayouts []*DescriptorSetLayout, pushConstants []vk.PushConstantRange) (*PipelineLayout, error) {
	l := make([]vk.DescriptorSetLayout, len(descriptorSetLayouts))
	for i, dsl := range descriptorSetLayouts {
		l[i] = dsl.VKDescriptorSetLayout
	}

	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(l)),
		PSetLayouts:            l,
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	var pipelineLayout vk.PipelineLayout
	err := vk.Error(vk.CreatePipelineLayout(d.VKDevice, &createInfo, nil, &pipelineLayout))
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline layout")
	}
	return &PipelineLayout{VKPipelineLayout: pipelineLayout, Device: d}, nil
}

func (d *Device) CreatePipelineLayout(descriptorSetLayouts ...*DescriptorSetLayout) (*PipelineLayout, error) {
	return d.CreatePipelineLayoutWithPushConstants(descriptorSetLayouts, nil)
}
