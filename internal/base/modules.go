package base

import (
	"github.com/celer/vkexamples/vkg"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// GraphicsModule contributes secondary command buffers to every frame. The
// buffers must inherit frame.RenderPass and frame.Framebuffer.
type GraphicsModule interface {
	NewFrame(base *AppBase)
	PostFrame()
	Destroy()
	CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error)
}

// InputModule receives window input, returning true stops the event from
// reaching modules registered after it
type InputModule interface {
	KeyChange(key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) bool
	MouseScrollChange(x, y float64) bool
	MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) bool
	CharChange(char rune) bool
}

// NopInput can be embedded by modules interested in only some events
type NopInput struct{}

func (NopInput) KeyChange(glfw.Key, int, glfw.Action, glfw.ModifierKey) bool {
	return false
}

func (NopInput) MouseScrollChange(float64, float64) bool {
	return false
}

func (NopInput) MouseButtonChange(glfw.MouseButton, glfw.Action, glfw.ModifierKey) bool {
	return false
}

func (NopInput) CharChange(rune) bool {
	return false
}

func (b *AppBase) dispatchInput(handle func(InputModule) bool) {
	for _, i := range b.InputModules {
		if handle(i) {
			break
		}
	}
}

func (b *AppBase) charChange(_ *glfw.Window, char rune) {
	b.dispatchInput(func(i InputModule) bool { return i.CharChange(char) })
}

func (b *AppBase) keyChange(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	b.dispatchInput(func(i InputModule) bool { return i.KeyChange(key, scancode, action, mods) })
}

func (b *AppBase) mouseScrollChange(_ *glfw.Window, x, y float64) {
	b.dispatchInput(func(i InputModule) bool { return i.MouseScrollChange(x, y) })
}

func (b *AppBase) mouseButtonChange(_ *glfw.Window, rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	b.dispatchInput(func(i InputModule) bool { return i.MouseButtonChange(rawButton, action, mods) })
}

// AddGraphicsModule registers g, it must be called before PrepareToDraw
func (b *AppBase) AddGraphicsModule(g GraphicsModule) {
	b.GraphicsModules = append(b.GraphicsModules, g)
}

func (b *AppBase) AddInputModule(i InputModule) {
	b.InputModules = append(b.InputModules, i)
}
