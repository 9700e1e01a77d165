package geometry

import (
	"unsafe"

	"github.com/celer/vkexamples/vkg"
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// UBO is the model/view/projection block bound at set 0 binding 0 of the vertex shaders
type UBO struct {
	Model lin.Mat4x4
	View  lin.Mat4x4
	Proj  lin.Mat4x4
}

// UBOSize is the size of UBO in bytes
const UBOSize = int(unsafe.Sizeof(UBO{}))

func (u *UBO) Bytes() []byte {
	return vkg.ToBytes(unsafe.Pointer(&u.Model[0]), UBOSize)
}

func (u *UBO) Descriptor() *vkg.Descriptor {
	return &vkg.Descriptor{
		Binding:     0,
		Set:         0,
		Type:        vk.DescriptorTypeUniformBuffer,
		ShaderStage: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
}

// NewUBO returns a block with an identity model looking at the origin from eye
func NewUBO(eye lin.Vec3) *UBO {
	u := &UBO{}
	u.Model.Identity()
	u.View.LookAt(&eye, &lin.Vec3{0, 0, 0}, &lin.Vec3{0, 0, 1})
	u.Proj.Identity()
	return u
}

// Aspect is width over height, a zero height yields 1
func Aspect(extent vk.Extent2D) float32 {
	if extent.Height == 0 {
		return 1
	}
	return float32(extent.Width) / float32(extent.Height)
}

// SetPerspective sets a 45 degree projection for extent, flipped for Vulkan's downward y
func (u *UBO) SetPerspective(extent vk.Extent2D) {
	u.Proj.Perspective(lin.DegreesToRadians(45), Aspect(extent), 0.1, 10.0)
	u.Proj[1][1] *= -1
}

// Spin rotates the model around the z axis by angle radians
func (u *UBO) Spin(angle float32) {
	var m lin.Mat4x4
	m.Dup(&u.Model)
	u.Model.Rotate(&m, 0, 0, 1, angle)
}
