package texture

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckerboard(t *testing.T) {
	a := color.RGBA{R: 255, A: 255}
	b := color.RGBA{B: 255, A: 255}
	img := Checkerboard(16, 4, a, b)

	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, a},
		{3, 3, a},
		{4, 0, b},
		{0, 4, b},
		{4, 4, a},
		{15, 15, a},
		{12, 8, b},
		{12, 4, a},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, img.RGBAAt(tt.x, tt.y), "pixel %d,%d", tt.x, tt.y)
	}
}

func TestCheckerboardDegenerate(t *testing.T) {
	a := color.RGBA{G: 255, A: 255}
	b := color.RGBA{A: 255}

	// more cells than pixels falls back to one pixel cells
	img := Checkerboard(4, 16, a, b)
	assert.Equal(t, a, img.RGBAAt(0, 0))
	assert.Equal(t, b, img.RGBAAt(1, 0))

	img = Checkerboard(4, 0, a, b)
	assert.Equal(t, a, img.RGBAAt(3, 3))
}
