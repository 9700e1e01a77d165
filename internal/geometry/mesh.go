package geometry

import (
	"github.com/celer/vkexamples/vkg"
	lin "github.com/xlab/linmath"
)

// Triangle is a single triangle with red, green and blue corners
func Triangle() (VertexData, vkg.IndexSliceUint16) {
	return VertexData{
			{Pos: lin.Vec3{0.0, -0.5, 0}, Color: lin.Vec3{1, 0, 0}},
			{Pos: lin.Vec3{0.5, 0.5, 0}, Color: lin.Vec3{0, 1, 0}},
			{Pos: lin.Vec3{-0.5, 0.5, 0}, Color: lin.Vec3{0, 0, 1}},
		},
		vkg.IndexSliceUint16{0, 1, 2}
}

// Cube is a unit cube centered on the origin sharing its eight corners between faces
func Cube() (VertexData, vkg.IndexSliceUint16) {
	return VertexData{
			{Pos: lin.Vec3{0.5, 0.5, -0.5}, Color: lin.Vec3{0, 0, 1}},
			{Pos: lin.Vec3{0.5, -0.5, -0.5}, Color: lin.Vec3{0, 1, 0}},
			{Pos: lin.Vec3{0.5, -0.5, 0.5}, Color: lin.Vec3{1, 0, 0}},
			{Pos: lin.Vec3{0.5, 0.5, 0.5}, Color: lin.Vec3{0, 1, 1}},

			{Pos: lin.Vec3{-0.5, 0.5, 0.5}, Color: lin.Vec3{0, 1, 1}},
			{Pos: lin.Vec3{-0.5, -0.5, 0.5}, Color: lin.Vec3{1, 1, 1}},
			{Pos: lin.Vec3{-0.5, -0.5, -0.5}, Color: lin.Vec3{1, 0, 1}},
			{Pos: lin.Vec3{-0.5, 0.5, -0.5}, Color: lin.Vec3{1, 1, 1}},
		},
		vkg.IndexSliceUint16{
			2, 1, 0, 3, 2, 0, // x+
			4, 3, 0, 7, 4, 0, // y+
			5, 2, 3, 4, 5, 3, // z+
			5, 7, 6, 7, 5, 4, // x-
			1, 2, 5, 1, 5, 6, // y-
			0, 1, 6, 0, 6, 3, // z-
		}
}

// cubeFaces lists the outward normal and the four corners of each face,
// counter clockwise when looking at the face from outside
var cubeFaces = []struct {
	normal  lin.Vec3
	corners [4]lin.Vec3
}{
	{lin.Vec3{1, 0, 0}, [4]lin.Vec3{{0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}}},
	{lin.Vec3{-1, 0, 0}, [4]lin.Vec3{{-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{lin.Vec3{0, 1, 0}, [4]lin.Vec3{{0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}}},
	{lin.Vec3{0, -1, 0}, [4]lin.Vec3{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	{lin.Vec3{0, 0, 1}, [4]lin.Vec3{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{lin.Vec3{0, 0, -1}, [4]lin.Vec3{{-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}}},
}

// LitCube is a unit cube with four vertices per face so each face gets a flat normal
func LitCube(color lin.Vec3) (LitVertexData, vkg.IndexSliceUint16) {
	vertices := make(LitVertexData, 0, len(cubeFaces)*4)
	indices := make(vkg.IndexSliceUint16, 0, len(cubeFaces)*6)
	for _, f := range cubeFaces {
		base := uint16(len(vertices))
		for _, c := range f.corners {
			vertices = append(vertices, LitVertex{Pos: c, Normal: f.normal, Color: color})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// Quad is a unit square in the xy plane mapped to the full texture
func Quad() (TexVertexData, vkg.IndexSliceUint16) {
	return TexVertexData{
			{Pos: lin.Vec3{-0.5, -0.5, 0}, UV: lin.Vec2{0, 0}},
			{Pos: lin.Vec3{0.5, -0.5, 0}, UV: lin.Vec2{1, 0}},
			{Pos: lin.Vec3{0.5, 0.5, 0}, UV: lin.Vec2{1, 1}},
			{Pos: lin.Vec3{-0.5, 0.5, 0}, UV: lin.Vec2{0, 1}},
		},
		vkg.IndexSliceUint16{0, 1, 2, 2, 3, 0}
}
