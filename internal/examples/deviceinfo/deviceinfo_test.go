package deviceinfo

import (
	"bytes"
	"errors"
	"testing"

	"github.com/celer/vkexamples/vkg"
	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestFeatureLines(t *testing.T) {
	features := vk.PhysicalDeviceFeatures{
		RobustBufferAccess: vk.True,
		FillModeNonSolid:   vk.True,
	}
	lines := featureLines(features)

	assert.Equal(t, "RobustBufferAccess true", lines[0])
	assert.Contains(t, lines, "FillModeNonSolid true")
	assert.Contains(t, lines, "GeometryShader false")
	for _, l := range lines {
		assert.NotContains(t, l, "ref")
	}
}

func TestHeapLine(t *testing.T) {
	h := vk.MemoryHeap{Size: 8 * 1024 * 1024 * 1024, Flags: vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)}
	assert.Equal(t, "8GiB\tDeviceLocal", heapLine(h))
}

func TestMemorySummary(t *testing.T) {
	types := vkg.MemoryTypeSlice{
		{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)},
		{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)},
		{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)},
	}
	assert.Equal(t, "1 device local, 2 host visible, 1 host coherent, 1 host visible and coherent", memorySummary(types))
}

func TestPrinterList(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf}
	p.list("Layers", []string{"a", "b"})
	assert.NoError(t, p.err)
	assert.Equal(t, "Layers\n"+rule+"\n\ta\n\tb\n\n", buf.String())
}

type failingWriter struct {
	writes int
}

func (f *failingWriter) Write([]byte) (int, error) {
	f.writes++
	return 0, errors.New("closed")
}

func TestPrinterStopsAfterError(t *testing.T) {
	w := &failingWriter{}
	p := &printer{w: w}
	p.printf("one")
	p.printf("two")
	assert.EqualError(t, p.err, "closed")
	assert.Equal(t, 1, w.writes)
}
