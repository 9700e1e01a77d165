package vkg

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNeedsStaging(t *testing.T) {
	assert.True(t, needsStaging(vk.MemoryPropertyDeviceLocalBit))
	assert.False(t, needsStaging(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	assert.False(t, needsStaging(vk.MemoryPropertyDeviceLocalBit|vk.MemoryPropertyHostVisibleBit))
}

func TestTightPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 9, A: 255})
	assert.Equal(t, img.Pix, tightPixels(img))

	sub, ok := img.SubImage(image.Rect(1, 1, 2, 2)).(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, []byte{9, 0, 0, 255}, tightPixels(sub))
}

func TestPoolSizeCoversDriverRounding(t *testing.T) {
	tests := []struct {
		name      string
		requested uint64
		ar        *AllocationRequirements
		want      uint64
	}{
		{"rounded up", 48, &AllocationRequirements{Size: 64, Alignment: 64}, 64},
		{"already large enough", 4096, &AllocationRequirements{Size: 256}, 4096},
		{"exact", 256, &AllocationRequirements{Size: 256}, 256},
		{"no requirements", 48, nil, 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, poolSize(tt.requested, tt.ar))
		})
	}
}

func TestPoolOfRoundedSizeFitsOneBuffer(t *testing.T) {
	ar := &AllocationRequirements{Size: 64, Alignment: 64}
	a := &LinearAllocator{Size: poolSize(48, ar)}
	assert.NotNil(t, a.Allocate(ar.Size, ar.Alignment))
}
