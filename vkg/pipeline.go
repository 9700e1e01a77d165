package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicsPipeline is a pipeline built by GraphicsApp from a named config
type GraphicsPipeline struct {
	Device     *Device
	Name       string
	VKPipeline vk.Pipeline
}

func (g *GraphicsPipeline) Destroy() {
	if g.VKPipeline != vk.NullPipeline {
		vk.DestroyPipeline(g.Device.VKDevice, g.VKPipeline, nil)
		g.VKPipeline = vk.NullPipeline
	}
}

type ComputePipeline struct {
	Device                          *Device
	VKPipeline                      vk.Pipeline
	VKPipelineShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
	VKPipelineLayout                vk.PipelineLayout
}

func (c *ComputePipeline) SetPipelineLayout(layout *PipelineLayout) {
	c.VKPipelineLayout = layout.VKPipelineLayout
}

func (c *ComputePipeline) SetShaderStage(entryPoint string, shaderModule *ShaderModule) {
	c.VKPipelineShaderStageCreateInfo = shaderModule.VKPipelineShaderStageCreateInfo(vk.ShaderStageComputeBit, entryPoint)
}

func (c *ComputePipeline) Destroy() {
	if c.VKPipeline != vk.NullPipeline {
		vk.DestroyPipeline(c.Device.VKDevice, c.VKPipeline, nil)
		c.VKPipeline = vk.NullPipeline
	}
}

type PipelineCache struct {
	Device          *Device
	VKPipelineCache vk.PipelineCache
}

func (d *Device) CreatePipelineCache() (*PipelineCache, error) {
	createInfo := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	var pipelineCache vk.PipelineCache
	err := vk.Error(vk.CreatePipelineCache(d.VKDevice, &createInfo, nil, &pipelineCache))
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline cache")
	}
	return &PipelineCache{Device: d, VKPipelineCache: pipelineCache}, nil
}

func (p *PipelineCache) Destroy() {
	vk.DestroyPipelineCache(p.Device.VKDevice, p.VKPipelineCache, nil)
}

// CreateComputePipelines builds every pipeline in cp with a single call
func (d *Device) CreateComputePipelines(pc *PipelineCache, cp ...*ComputePipeline) error {
	if len(cp) == 0 {
		return nil
	}
	ci := make([]vk.ComputePipelineCreateInfo, len(cp))
	for i, p := range cp {
		ci[i] = vk.ComputePipelineCreateInfo{
			SType:  vk.StructureTypeComputePipelineCreateInfo,
			Stage:  p.VKPipelineShaderStageCreateInfo,
			Layout: p.VKPipelineLayout,
		}
	}

	var cache vk.PipelineCache
	if pc != nil {
		cache = pc.VKPipelineCache
	}

	pipelines := make([]vk.Pipeline, len(cp))
	err := vk.Error(vk.CreateComputePipelines(d.VKDevice, cache, uint32(len(ci)), ci, nil, pipelines))
	if err != nil {
		return errors.Wrapf(err, "creating %d compute pipelines", len(ci))
	}

	for i := range pipelines {
		cp[i].Device = d
		cp[i].VKPipeline = pipelines[i]
	}
	return nil
}
