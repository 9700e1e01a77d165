package overlay

import (
	"testing"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestOrthographic(t *testing.T) {
	m := orthographic(vk.Extent2D{Width: 800, Height: 400})
	assert.InDelta(t, 2.0/800, m[0][0], 1e-9)
	assert.InDelta(t, 2.0/400, m[1][1], 1e-9)
	assert.Equal(t, float32(-1), m[3][0])
	assert.Equal(t, float32(-1), m[3][1])

	// a zero extent must not divide by zero
	z := orthographic(vk.Extent2D{})
	assert.Equal(t, float32(2), z[0][0])
}

func TestClipScissor(t *testing.T) {
	extent := vk.Extent2D{Width: 100, Height: 50}

	tests := []struct {
		name    string
		clip    imgui.Vec4
		want    vk.Rect2D
		visible bool
	}{
		{
			name:    "inside",
			clip:    imgui.Vec4{X: 10, Y: 5, Z: 30, W: 25},
			want:    vk.Rect2D{Offset: vk.Offset2D{X: 10, Y: 5}, Extent: vk.Extent2D{Width: 20, Height: 20}},
			visible: true,
		},
		{
			name:    "clamped",
			clip:    imgui.Vec4{X: -10, Y: -10, Z: 200, W: 200},
			want:    vk.Rect2D{Extent: vk.Extent2D{Width: 100, Height: 50}},
			visible: true,
		},
		{
			name: "off screen",
			clip: imgui.Vec4{X: 120, Y: 0, Z: 150, W: 10},
		},
		{
			name: "empty",
			clip: imgui.Vec4{X: 10, Y: 10, Z: 10, W: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, visible := clipScissor(tt.clip, extent)
			assert.Equal(t, tt.visible, visible)
			if tt.visible {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProjectionBytes(t *testing.T) {
	p := projection{}
	assert.Len(t, p.Bytes(), 64)
}
