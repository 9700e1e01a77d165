package computeshader

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestDispatchGroups(t *testing.T) {
	tests := []struct {
		dim, wg, want int
	}{
		{3200, 32, 100},
		{2400, 32, 75},
		{33, 32, 2},
		{32, 32, 1},
		{1, 32, 1},
		{0, 32, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dispatchGroups(tt.dim, tt.wg), "dim=%d wg=%d", tt.dim, tt.wg)
	}
}

func floatBytes(f []float32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}

func TestPixelsToImage(t *testing.T) {
	pixels := []float32{
		0, 0.5, 1, 1,
		-1, 2, float32(math.NaN()), 0.25,
	}
	img, err := pixelsToImage(floatBytes(pixels), 2, 1)
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 128, 255, 255}, img.Pix[0:4])
	assert.Equal(t, []uint8{0, 255, 0, 64}, img.Pix[4:8])
}

func TestPixelsToImageRows(t *testing.T) {
	pixels := make([]float32, 2*3*4)
	// bottom right pixel
	copy(pixels[len(pixels)-4:], []float32{1, 0, 0, 1})
	img, err := pixelsToImage(floatBytes(pixels), 2, 3)
	require.NoError(t, err)

	c := img.RGBAAt(1, 2)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 0).A)
}

func TestPixelsToImageShortBuffer(t *testing.T) {
	_, err := pixelsToImage(make([]byte, 16), 2, 2)
	assert.Error(t, err)
}

func TestParamsLayout(t *testing.T) {
	assert.Equal(t, 8, paramsSize)
	p := params{Width: 3, Height: 4}
	assert.Len(t, p.Bytes(), 8)
}

func TestWorkgroupSpecialization(t *testing.T) {
	wg := uint32(16)
	info := workgroupSpecialization(&wg)
	assert.Equal(t, uint32(2), info.MapEntryCount)
	assert.Equal(t, uint32(0), info.PMapEntries[0].ConstantID)
	assert.Equal(t, uint32(1), info.PMapEntries[1].ConstantID)
	assert.Equal(t, unsafe.Pointer(&wg), info.PData)
}

func TestWritePNG(t *testing.T) {
	pixels := make([]float32, 4*4*4)
	for i := range pixels {
		pixels[i] = 1
	}
	img, err := pixelsToImage(floatBytes(pixels), 4, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, writePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
}

func TestWritePNGBadPath(t *testing.T) {
	img, err := pixelsToImage(nil, 0, 0)
	require.NoError(t, err)
	assert.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "out.png"), img))
}

func TestCheckWorkgroup(t *testing.T) {
	limits := vk.PhysicalDeviceLimits{
		MaxComputeWorkGroupInvocations: 256,
		MaxComputeWorkGroupSize:        [3]uint32{1024, 1024, 64},
	}
	assert.NoError(t, checkWorkgroup(16, limits))
	assert.ErrorIs(t, checkWorkgroup(32, limits), ErrWorkgroupTooLarge)
	assert.Error(t, checkWorkgroup(0, limits))

	limits.MaxComputeWorkGroupInvocations = 4096
	limits.MaxComputeWorkGroupSize[1] = 16
	assert.ErrorIs(t, checkWorkgroup(32, limits), ErrWorkgroupTooLarge)
}
