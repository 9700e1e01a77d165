package geometry

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

func TestVertexLayouts(t *testing.T) {
	tests := []struct {
		name    string
		binding vk.VertexInputBindingDescription
		attrs   []vk.VertexInputAttributeDescription
		stride  uint32
		offsets []uint32
	}{
		{"vertex", VertexData{}.GetBindingDescription(), VertexData{}.GetAttributeDescriptions(), 24, []uint32{0, 12}},
		{"lit", LitVertexData{}.GetBindingDescription(), LitVertexData{}.GetAttributeDescriptions(), 36, []uint32{0, 12, 24}},
		{"tex", TexVertexData{}.GetBindingDescription(), TexVertexData{}.GetAttributeDescriptions(), 20, []uint32{0, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stride, tt.binding.Stride)
			require.Len(t, tt.attrs, len(tt.offsets))
			for i, a := range tt.attrs {
				assert.Equal(t, uint32(i), a.Location)
				assert.Equal(t, tt.offsets[i], a.Offset)
			}
		})
	}
}

func TestBytes(t *testing.T) {
	v, i := Triangle()
	assert.Len(t, v.Bytes(), 3*int(unsafe.Sizeof(Vertex{})))
	assert.Len(t, i.Bytes(), 6)

	q, _ := Quad()
	assert.Len(t, q.Bytes(), 4*20)

	assert.Nil(t, VertexData{}.Bytes())
	assert.Nil(t, LitVertexData{}.Bytes())
	assert.Nil(t, TexVertexData{}.Bytes())
}

func TestIndicesInRange(t *testing.T) {
	tv, ti := Triangle()
	cv, ci := Cube()
	lv, li := LitCube(lin.Vec3{1, 1, 1})
	qv, qi := Quad()

	tests := []struct {
		name     string
		vertices int
		indices  []uint16
	}{
		{"triangle", len(tv), ti},
		{"cube", len(cv), ci},
		{"lit cube", len(lv), li},
		{"quad", len(qv), qi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, len(tt.indices)%3)
			for _, idx := range tt.indices {
				assert.Less(t, int(idx), tt.vertices)
			}
		})
	}
}

func TestLitCubeNormals(t *testing.T) {
	v, i := LitCube(lin.Vec3{0.5, 0.5, 0.5})
	assert.Len(t, v, 24)
	assert.Len(t, i, 36)

	for _, vert := range v {
		// every corner lies on the face its normal points at
		var dot float32
		for k := 0; k < 3; k++ {
			dot += vert.Pos[k] * vert.Normal[k]
		}
		assert.InDelta(t, 0.5, dot, 1e-6)
		assert.Equal(t, lin.Vec3{0.5, 0.5, 0.5}, vert.Color)
	}
}

func TestUBO(t *testing.T) {
	u := NewUBO(lin.Vec3{2, 2, 2})
	assert.Len(t, u.Bytes(), 3*16*4)
	assert.Equal(t, UBOSize, len(u.Bytes()))

	d := u.Descriptor()
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, d.Type)
	assert.Equal(t, 0, d.Binding)

	u.SetPerspective(vk.Extent2D{Width: 800, Height: 600})
	assert.Less(t, u.Proj[1][1], float32(0))

	before := u.Model
	u.Spin(0.5)
	assert.NotEqual(t, before, u.Model)
}

func TestAspect(t *testing.T) {
	assert.InDelta(t, 2.0, Aspect(vk.Extent2D{Width: 200, Height: 100}), 1e-6)
	assert.Equal(t, float32(1), Aspect(vk.Extent2D{Width: 200}))
}
