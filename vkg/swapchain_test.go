package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil))
}

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	f, err := chooseSurfaceFormat([]vk.SurfaceFormat{srgb, unorm})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, f.Format)

	f, err = chooseSurfaceFormat([]vk.SurfaceFormat{srgb})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, f.Format)

	f, err = chooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatUndefined}})
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, f.Format)

	_, err = chooseSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, vk.Extent2D{Width: 10, Height: 10}))

	caps.CurrentExtent = vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720}, chooseExtent(caps, vk.Extent2D{Width: 1280, Height: 720}))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 1}, chooseExtent(caps, vk.Extent2D{Width: 9000, Height: 0}))
}

func TestChooseImageCount(t *testing.T) {
	assert.EqualValues(t, 3, chooseImageCount(2, 0))
	assert.EqualValues(t, 3, chooseImageCount(2, 8))
	assert.EqualValues(t, 2, chooseImageCount(2, 2))
}
