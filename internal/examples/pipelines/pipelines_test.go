package pipelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestVariants(t *testing.T) {
	v := variants(true)
	require.Len(t, v, 3)
	assert.Equal(t, "phong", v[0].name)
	assert.Equal(t, "toon", v[1].name)
	assert.Equal(t, "toon.frag.spv", v[1].fragment)
	assert.Equal(t, "wireframe", v[2].name)
	assert.Equal(t, vk.PolygonModeLine, v[2].mode)
}

func TestVariantsWithoutNonSolidFill(t *testing.T) {
	for _, v := range variants(false) {
		assert.Equal(t, vk.PolygonModeFill, v.mode, v.name)
	}
	assert.Equal(t, "phong.frag.spv", variants(false)[2].fragment)
}

func TestColumns(t *testing.T) {
	rects := columns(vk.Extent2D{Width: 1000, Height: 600}, 3)
	require.Len(t, rects, 3)

	var total uint32
	for i, r := range rects {
		assert.Equal(t, uint32(600), r.Extent.Height)
		assert.Equal(t, int32(total), r.Offset.X, "column %d", i)
		total += r.Extent.Width
	}
	assert.Equal(t, uint32(1000), total)
	assert.Equal(t, uint32(333), rects[0].Extent.Width)
	assert.Equal(t, uint32(334), rects[2].Extent.Width)

	assert.Nil(t, columns(vk.Extent2D{Width: 10, Height: 10}, 0))
}

func TestLightLayout(t *testing.T) {
	assert.Equal(t, 32, lightSize)
	l := light{Direction: [4]float32{1, 2, 3, 0}}
	assert.Len(t, l.Bytes(), 32)
}

func TestRegistered(t *testing.T) {
	assert.Equal(t, "pipelines", Example{}.Name())
	assert.NotEmpty(t, Example{}.Description())
}
