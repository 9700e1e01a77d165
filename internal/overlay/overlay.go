// Package overlay draws Dear ImGui windows on top of an example.
package overlay

import (
	"math"

	"github.com/celer/vkexamples/internal/base"
	"github.com/celer/vkexamples/vkg"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultPoolSize is the host memory reserved for per frame vertex and index data
const DefaultPoolSize = 8 * 1024 * 1024

// UI draws imgui widgets, it is called once per frame between imgui.NewFrame and imgui.Render
type UI interface {
	DrawUI()
}

// Module is both a graphics module and an input module. It only claims input
// while imgui wants the mouse or keyboard.
type Module struct {
	io       imgui.IO
	context  *imgui.Context
	renderer *renderer
	window   *glfw.Window

	time             float64
	mouseJustPressed [3]bool

	wantMouse    bool
	wantKeyboard bool

	uis []UI
}

// New creates the overlay and registers its pipeline, it must be called after
// b.Init and before b.PrepareToDraw
func New(b *base.AppBase) (*Module, error) {
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()

	m := &Module{
		context: context,
		io:      io,
		window:  b.Window,
	}
	m.renderer = newRenderer(b, m, DefaultPoolSize)

	err := m.renderer.init(io.Fonts())
	if err != nil {
		m.renderer.destroy()
		context.Destroy()
		return nil, err
	}

	m.setKeyMapping()
	return m, nil
}

func (m *Module) AddUI(ui UI) {
	m.uis = append(m.uis, ui)
}

func (m *Module) NewFrame(_ *base.AppBase) {
	m.wantMouse = m.io.WantCaptureMouse()
	m.wantKeyboard = m.io.WantCaptureKeyboard()

	currentTime := glfw.GetTime()
	if m.time > 0 {
		m.io.SetDeltaTime(float32(currentTime - m.time))
	}
	m.time = currentTime

	if m.window.GetAttrib(glfw.Focused) != 0 {
		x, y := m.window.GetCursorPos()
		m.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		m.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for j := 0; j < len(m.mouseJustPressed); j++ {
		down := m.mouseJustPressed[j] || m.window.GetMouseButton(glfwButtonIDByIndex[j]) == glfw.Press
		m.io.SetMouseButtonDown(j, down)
		m.mouseJustPressed[j] = false
	}
}

func (m *Module) PostFrame() {}

func (m *Module) Destroy() {
	m.renderer.destroy()
	m.context.Destroy()
}

func (m *Module) CreateCommandBuffers(frame *vkg.FrameContext) ([]vk.CommandBuffer, error) {
	m.io.SetDisplaySize(imgui.Vec2{X: float32(frame.Extent.Width), Y: float32(frame.Extent.Height)})
	imgui.NewFrame()

	for _, ui := range m.uis {
		ui.DrawUI()
	}

	imgui.Render()
	return m.renderer.render(frame, imgui.RenderedDrawData())
}

func (m *Module) KeyChange(key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) bool {
	if !m.wantKeyboard {
		return false
	}

	switch action {
	case glfw.Press:
		m.io.KeyPress(int(key))
	case glfw.Release:
		m.io.KeyRelease(int(key))
	}

	// modifier flags are unreliable across platforms, derive them from key state
	m.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	m.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	m.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	m.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))

	return true
}

func (m *Module) setKeyMapping() {
	for imguiKey, glfwKey := range keyMapping {
		m.io.KeyMap(imguiKey, int(glfwKey))
	}
}

var keyMapping = map[int]glfw.Key{
	imgui.KeyTab:        glfw.KeyTab,
	imgui.KeyLeftArrow:  glfw.KeyLeft,
	imgui.KeyRightArrow: glfw.KeyRight,
	imgui.KeyUpArrow:    glfw.KeyUp,
	imgui.KeyDownArrow:  glfw.KeyDown,
	imgui.KeyPageUp:     glfw.KeyPageUp,
	imgui.KeyPageDown:   glfw.KeyPageDown,
	imgui.KeyHome:       glfw.KeyHome,
	imgui.KeyEnd:        glfw.KeyEnd,
	imgui.KeyInsert:     glfw.KeyInsert,
	imgui.KeyDelete:     glfw.KeyDelete,
	imgui.KeyBackspace:  glfw.KeyBackspace,
	imgui.KeySpace:      glfw.KeySpace,
	imgui.KeyEnter:      glfw.KeyEnter,
	imgui.KeyEscape:     glfw.KeyEscape,
	imgui.KeyA:          glfw.KeyA,
	imgui.KeyC:          glfw.KeyC,
	imgui.KeyV:          glfw.KeyV,
	imgui.KeyX:          glfw.KeyX,
	imgui.KeyY:          glfw.KeyY,
	imgui.KeyZ:          glfw.KeyZ,
}

var glfwButtonIndexByID = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

var glfwButtonIDByIndex = map[int]glfw.MouseButton{
	0: glfw.MouseButton1,
	1: glfw.MouseButton2,
	2: glfw.MouseButton3,
}

func (m *Module) MouseScrollChange(x, y float64) bool {
	if !m.wantMouse {
		return false
	}
	m.io.AddMouseWheelDelta(float32(x), float32(y))
	return true
}

func (m *Module) MouseButtonChange(rawButton glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) bool {
	if !m.wantMouse {
		return false
	}
	if buttonIndex, known := glfwButtonIndexByID[rawButton]; known && action == glfw.Press {
		m.mouseJustPressed[buttonIndex] = true
	}
	return true
}

func (m *Module) CharChange(char rune) bool {
	if !m.wantKeyboard {
		return false
	}
	m.io.AddInputCharacters(string(char))
	return true
}
