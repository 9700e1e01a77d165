package vkg

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffers describe a sequence of commands that will be executed
// upon being sent to a device queue. Not all available vulkan commands
// are wrapped by this package, VK() gives access to the native handle
// for anything else.
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
	Level           vk.CommandBufferLevel
}

// ResetAndRelease will reset this commandbuffer and release the associated resources
func (c *CommandBuffer) ResetAndRelease() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

func (c *CommandBuffer) begin(flags vk.CommandBufferUsageFlagBits, inherit []vk.CommandBufferInheritanceInfo) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		Flags:            vk.CommandBufferUsageFlags(flags),
		PInheritanceInfo: inherit,
	}
	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// BeginContinueRenderPass begins a secondary command buffer which will be
// executed inside the given render pass and framebuffer
func (c *CommandBuffer) BeginContinueRenderPass(renderpass vk.RenderPass, framebuffer vk.Framebuffer) error {
	return c.begin(vk.CommandBufferUsageRenderPassContinueBit, []vk.CommandBufferInheritanceInfo{{
		SType:       vk.StructureTypeCommandBufferInheritanceInfo,
		RenderPass:  renderpass,
		Framebuffer: framebuffer,
	}})
}

// Begin capturing work for this command buffer
func (c *CommandBuffer) Begin() error {
	return c.begin(0, nil)
}

// BeginOneTime begins capturing work for this command buffer, with the stipulation that it will only be used once (instead of put back in the pool of command buffers)
func (c *CommandBuffer) BeginOneTime() error {
	return c.begin(vk.CommandBufferUsageOneTimeSubmitBit, nil)
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer))
}

// CmdBeginRenderPass starts the render pass clearing every attachment. When
// secondary is true the contents of the pass are supplied by CmdExecuteCommands.
func (c *CommandBuffer) CmdBeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue, secondary bool) {
	contents := vk.SubpassContentsInline
	if secondary {
		contents = vk.SubpassContentsSecondaryCommandBuffers
	}
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, contents)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

// CmdExecuteCommands runs previously recorded secondary command buffers
func (c *CommandBuffer) CmdExecuteCommands(buffers ...vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.CmdExecuteCommands(c.VKCommandBuffer, uint32(len(buffers)), buffers)
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(p *GraphicsPipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindComputePipeline(p *ComputePipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointCompute, p.VKPipeline)
}

func (c *CommandBuffer) CmdBindDescriptorSets(bindPoint vk.PipelineBindPoint, layout *PipelineLayout, firstSet int, descriptorSets ...*DescriptorSet) {
	sets := make([]vk.DescriptorSet, len(descriptorSets))
	for i := range descriptorSets {
		sets[i] = descriptorSets[i].VKDescriptorSet
	}

	vk.CmdBindDescriptorSets(c.VKCommandBuffer, bindPoint,
		layout.VKPipelineLayout, uint32(firstSet), uint32(len(descriptorSets)), sets, 0, nil)
}

// CmdBindVertexBuffers binds buffers to consecutive vertex input bindings, starting at binding 0
func (c *CommandBuffer) CmdBindVertexBuffers(buffers ...vk.Buffer) {
	offsets := make([]vk.DeviceSize, len(buffers))
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, 0, uint32(len(buffers)), buffers, offsets)
}

func (c *CommandBuffer) CmdBindIndexBuffer(buffer vk.Buffer, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(c.VKCommandBuffer, buffer, 0, indexType)
}

func (c *CommandBuffer) CmdDraw(vertexCount, instanceCount int) {
	vk.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), uint32(instanceCount), 0, 0)
}

func (c *CommandBuffer) CmdDrawIndexed(indexCount, instanceCount int) {
	vk.CmdDrawIndexed(c.VKCommandBuffer, uint32(indexCount), uint32(instanceCount), 0, 0, 0)
}

// CmdPushConstants copies data into the push constant range at offset
func (c *CommandBuffer) CmdPushConstants(layout *PipelineLayout, stages vk.ShaderStageFlagBits, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.VKCommandBuffer, layout.VKPipelineLayout, vk.ShaderStageFlags(stages),
		uint32(offset), uint32(len(data)), unsafe.Pointer(&data[0]))
}

// CmdSetViewport sets a viewport covering extent with a depth range of 0..1
func (c *CommandBuffer) CmdSetViewport(extent vk.Extent2D) {
	vk.CmdSetViewport(c.VKCommandBuffer, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
}

func (c *CommandBuffer) CmdSetScissor(extent vk.Extent2D) {
	vk.CmdSetScissor(c.VKCommandBuffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{},
		Extent: extent,
	}})
}

func (c *CommandBuffer) CmdDispatch(x, y, z int) {
	vk.CmdDispatch(c.VKCommandBuffer, uint32(x), uint32(y), uint32(z))
}
