// Package geometry holds the vertex layouts, meshes and uniform blocks shared by the examples.
package geometry

import (
	"unsafe"

	"github.com/celer/vkexamples/vkg"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// Vertex is a position with a per vertex color
type Vertex struct {
	Pos   lin.Vec3
	Color lin.Vec3
}

type VertexData []Vertex

func (v VertexData) Bytes() []byte {
	if len(v) == 0 {
		return nil
	}
	return vkg.ToBytes(unsafe.Pointer(&v[0]), len(v)*int(unsafe.Sizeof(Vertex{})))
}

func (v VertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(Vertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v VertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Pos))},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
	}
}

// LitVertex carries a normal for the lighting pipelines
type LitVertex struct {
	Pos    lin.Vec3
	Normal lin.Vec3
	Color  lin.Vec3
}

type LitVertexData []LitVertex

func (v LitVertexData) Bytes() []byte {
	if len(v) == 0 {
		return nil
	}
	return vkg.ToBytes(unsafe.Pointer(&v[0]), len(v)*int(unsafe.Sizeof(LitVertex{})))
}

func (v LitVertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(LitVertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v LitVertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(LitVertex{}.Pos))},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(LitVertex{}.Normal))},
		{Binding: 0, Location: 2, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(LitVertex{}.Color))},
	}
}

// TexVertex is a position with texture coordinates
type TexVertex struct {
	Pos lin.Vec3
	UV  lin.Vec2
}

type TexVertexData []TexVertex

func (v TexVertexData) Bytes() []byte {
	if len(v) == 0 {
		return nil
	}
	return vkg.ToBytes(unsafe.Pointer(&v[0]), len(v)*int(unsafe.Sizeof(TexVertex{})))
}

func (v TexVertexData) GetBindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(unsafe.Sizeof(TexVertex{})),
		InputRate: vk.VertexInputRateVertex,
	}
}

func (v TexVertexData) GetAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Binding: 0, Location: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(TexVertex{}.Pos))},
		{Binding: 0, Location: 1, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(TexVertex{}.UV))},
	}
}
