package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestAspectForFormat(t *testing.T) {
	tests := []struct {
		format vk.Format
		want   vk.ImageAspectFlags
	}{
		{vk.FormatR8g8b8a8Unorm, vk.ImageAspectFlags(vk.ImageAspectColorBit)},
		{vk.FormatB8g8r8a8Unorm, vk.ImageAspectFlags(vk.ImageAspectColorBit)},
		{vk.FormatD32Sfloat, vk.ImageAspectFlags(vk.ImageAspectDepthBit)},
		{vk.FormatD24UnormS8Uint, vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, aspectForFormat(tt.format), "format %d", tt.format)
	}
}

func TestTransitionFor(t *testing.T) {
	tr, ok := transitionFor(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	assert.True(t, ok)
	assert.Equal(t, vk.AccessFlagBits(0), tr.srcAccess)
	assert.Equal(t, vk.AccessTransferWriteBit, tr.dstAccess)
	assert.Equal(t, vk.PipelineStageTransferBit, tr.dstStage)

	tr, ok = transitionFor(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	assert.True(t, ok)
	assert.Equal(t, vk.AccessTransferWriteBit, tr.srcAccess)
	assert.Equal(t, vk.AccessShaderReadBit, tr.dstAccess)
	assert.Equal(t, vk.PipelineStageFragmentShaderBit, tr.dstStage)

	_, ok = transitionFor(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutUndefined)
	assert.False(t, ok)
}
