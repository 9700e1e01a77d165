package multithreading

import (
	"runtime"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		n, w int
		want []span
	}{
		{"even", 8, 4, []span{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder goes first", 10, 4, []span{{0, 3}, {3, 6}, {6, 8}, {8, 10}}},
		{"more workers than objects", 2, 3, []span{{0, 1}, {1, 2}, {2, 2}}},
		{"single worker", 5, 1, []span{{0, 5}}},
		{"no objects", 0, 2, []span{{0, 0}, {0, 0}}},
		{"no workers", 5, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, partition(tt.n, tt.w))
		})
	}
}

func TestPartitionCoversEveryObject(t *testing.T) {
	for n := 0; n < 50; n++ {
		for w := 1; w < 9; w++ {
			spans := partition(n, w)
			require.Len(t, spans, w)
			next := 0
			for _, s := range spans {
				assert.Equal(t, next, s.start)
				assert.GreaterOrEqual(t, s.len(), n/w)
				assert.LessOrEqual(t, s.len(), n/w+1)
				next = s.end
			}
			assert.Equal(t, n, next)
		}
	}
}

func TestWorkerCount(t *testing.T) {
	cpus := runtime.NumCPU()
	assert.Equal(t, 4, workerCount(4, 100))
	assert.Equal(t, 3, workerCount(8, 3))
	assert.Equal(t, min(cpus, 1000), workerCount(0, 1000))
	assert.Equal(t, 1, workerCount(0, 1))
	assert.Equal(t, 2, workerCount(2, 0))
}

func TestGridPositions(t *testing.T) {
	assert.Nil(t, gridPositions(0))

	p := gridPositions(4)
	require.Len(t, p, 4)
	assert.Equal(t, mgl32.Vec3{-spacing / 2, -spacing / 2, 0}, p[0])
	assert.Equal(t, mgl32.Vec3{spacing / 2, spacing / 2, 0}, p[3])

	var sum mgl32.Vec3
	for _, v := range gridPositions(9) {
		sum = sum.Add(v)
	}
	assert.InDelta(t, 0, sum.Len(), 1e-4)
}

func TestPushConstantsLayout(t *testing.T) {
	assert.Equal(t, 80, pushConstantsSize)
	pc := pushConstants{MVP: mgl32.Ident4(), Color: mgl32.Vec4{1, 0, 0, 1}}
	assert.Len(t, pc.Bytes(), 80)
}

func TestObjectModel(t *testing.T) {
	o := object{position: mgl32.Vec3{1, 2, 3}, axis: mgl32.Vec3{0, 0, 1}, speed: 1}
	m := o.model(0)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, m.Col(3).Vec3())
	assert.InDelta(t, 0.5, m.At(0, 0), 1e-6)
}

func TestNewObjects(t *testing.T) {
	objs := newObjects(16)
	require.Len(t, objs, 16)
	for _, o := range objs {
		assert.InDelta(t, 1, o.axis.Len(), 1e-5)
		assert.Equal(t, float32(1), o.color.W())
	}
}

func TestCameraFlipsY(t *testing.T) {
	vp := camera(16, vk.Extent2D{Width: 800, Height: 600})
	p := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	// the origin lands in the middle of the screen
	assert.InDelta(t, 0, p.X()/p.W(), 1e-5)
	assert.InDelta(t, 0, p.Y()/p.W(), 1e-5)
}

func TestPauseToggle(t *testing.T) {
	m := &module{}
	assert.True(t, m.KeyChange(glfw.KeySpace, 0, glfw.Press, 0))
	assert.True(t, m.paused)
	assert.False(t, m.KeyChange(glfw.KeySpace, 0, glfw.Release, 0))
	assert.False(t, m.KeyChange(glfw.KeyA, 0, glfw.Press, 0))
	assert.True(t, m.paused)
}

func TestPausedFramesDoNotAdvance(t *testing.T) {
	m := &module{}
	m.NewFrame(nil)
	time.Sleep(5 * time.Millisecond)
	m.NewFrame(nil)
	assert.Greater(t, m.elapsed, float32(0))

	m.paused = true
	before := m.elapsed
	time.Sleep(5 * time.Millisecond)
	m.NewFrame(nil)
	assert.Equal(t, before, m.elapsed)
	assert.Greater(t, m.frameTime, time.Duration(0))
}

func TestStats(t *testing.T) {
	m := &module{objects: newObjects(3), workers: []*worker{{}, {}}, frameTime: 10 * time.Millisecond}
	assert.Equal(t, "frame 10.00 ms (100 fps)\nworkers 2\nobjects 3", m.stats())
}
