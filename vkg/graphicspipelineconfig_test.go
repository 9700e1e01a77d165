package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type testVertex struct{}

func (testVertex) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{Binding: 0, Stride: 24, InputRate: vk.VertexInputRateVertex}
}

func (testVertex) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
	}
}

func testPipelineConfig() *GraphicsPipelineConfig {
	var d *Device
	g := d.CreateGraphicsPipelineConfig()
	g.SetShaderStages([]vk.PipelineShaderStageCreateInfo{
		{Stage: vk.ShaderStageVertexBit},
		{Stage: vk.ShaderStageFragmentBit},
	})
	g.SetPipelineLayout(&PipelineLayout{})
	return g
}

func TestGraphicsPipelineConfigDefaults(t *testing.T) {
	g := testPipelineConfig()
	ci, err := g.VKGraphicsPipelineCreateInfo(vk.Extent2D{Width: 640, Height: 480})
	require.NoError(t, err)

	assert.EqualValues(t, 2, ci.StageCount)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, ci.PInputAssemblyState.Topology)
	assert.Equal(t, vk.PolygonModeFill, ci.PRasterizationState.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), ci.PRasterizationState.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, ci.PRasterizationState.FrontFace)
	assert.EqualValues(t, 1.0, ci.PRasterizationState.LineWidth)
	assert.Equal(t, vk.Bool32(vk.True), ci.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.True), ci.PDepthStencilState.DepthWriteEnable)
	assert.Nil(t, ci.PDynamicState)

	require.Len(t, ci.PViewportState.PViewports, 1)
	assert.EqualValues(t, 640, ci.PViewportState.PViewports[0].Width)
	assert.EqualValues(t, 480, ci.PViewportState.PViewports[0].Height)
	assert.EqualValues(t, 1, ci.PViewportState.PViewports[0].MaxDepth)

	require.Len(t, ci.PColorBlendState.PAttachments, 1)
	assert.Equal(t, vk.Bool32(vk.False), ci.PColorBlendState.PAttachments[0].BlendEnable)
}

func TestGraphicsPipelineConfigOverrides(t *testing.T) {
	g := testPipelineConfig().
		SetPolygonMode(vk.PolygonModeLine).
		SetCullMode(vk.CullModeNone).
		SetDepth(true, false).
		SetDynamicState(vk.DynamicStateViewport, vk.DynamicStateScissor).
		AddVertexDescriptor(testVertex{})

	configured := false
	g.Configure = func(ci *vk.GraphicsPipelineCreateInfo) {
		configured = true
		ci.Subpass = 0
	}

	ci, err := g.VKGraphicsPipelineCreateInfo(vk.Extent2D{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.True(t, configured)
	assert.Equal(t, vk.PolygonModeLine, ci.PRasterizationState.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), ci.PRasterizationState.CullMode)
	assert.Equal(t, vk.Bool32(vk.False), ci.PDepthStencilState.DepthWriteEnable)

	require.NotNil(t, ci.PDynamicState)
	assert.EqualValues(t, 2, ci.PDynamicState.DynamicStateCount)

	assert.EqualValues(t, 1, ci.PVertexInputState.VertexBindingDescriptionCount)
	assert.EqualValues(t, 2, ci.PVertexInputState.VertexAttributeDescriptionCount)
	assert.EqualValues(t, 24, ci.PVertexInputState.PVertexBindingDescriptions[0].Stride)
}

func TestGraphicsPipelineConfigRequiresStagesAndLayout(t *testing.T) {
	var d *Device
	g := d.CreateGraphicsPipelineConfig()
	_, err := g.VKGraphicsPipelineCreateInfo(vk.Extent2D{Width: 1, Height: 1})
	assert.Error(t, err)

	g.SetShaderStages([]vk.PipelineShaderStageCreateInfo{{Stage: vk.ShaderStageVertexBit}})
	_, err = g.VKGraphicsPipelineCreateInfo(vk.Extent2D{Width: 1, Height: 1})
	assert.Error(t, err)
}
