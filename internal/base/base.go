// Package base bootstraps the window, device and swapchain shared by the windowed examples.
package base

import (
	"context"
	"runtime"

	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/logging"
	"github.com/celer/vkexamples/vkg"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// ClearColor is the background every example renders over
var ClearColor = [4]float32{0.2, 0.2, 0.2, 1}

// AppBase composes a GraphicsApp with modules that record the frame contents
type AppBase struct {
	vkg.GraphicsApp

	Config *config.Config

	GraphicsModules []GraphicsModule
	InputModules    []InputModule

	framePools map[GraphicsModule]FramePools
	log        *logrus.Entry
}

// WindowTitle prefixes the example name with the configured title
func WindowTitle(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ": " + name
}

// New opens a window and prepares a GraphicsApp for it. It locks the calling
// goroutine to its OS thread, so every later call must come from that goroutine.
func New(cfg *config.Config, title string) (*AppBase, error) {
	runtime.LockOSThread()

	err := glfw.Init()
	if err != nil {
		return nil, errors.Wrap(err, "unable to initialize glfw")
	}

	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("vulkan is unsupported")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	err = vk.Init()
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "unable to initialize vulkan")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, WindowTitle(cfg.Window.Title, title), nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "unable to create window")
	}

	app, err := vkg.NewGraphicsApp(title, vkg.Version{Major: 0, Minor: 1, Patch: 0})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create vulkan app")
	}
	app.FramesInFlight = cfg.Vulkan.FramesInFlight
	app.DeviceIndex = cfg.Vulkan.DeviceIndex

	b := &AppBase{
		GraphicsApp: *app,
		Config:      cfg,
		framePools:  make(map[GraphicsModule]FramePools),
		log:         logging.WithExample(title),
	}

	err = b.SetWindow(window)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	if cfg.Vulkan.Validation {
		err = b.EnableDebugging()
		if err != nil {
			b.log.WithError(err).Warn("validation layer unavailable, continuing without it")
		}
	}

	return b, nil
}

// Init creates the device and hooks up window callbacks
func (b *AppBase) Init() error {
	err := b.GraphicsApp.Init()
	if err != nil {
		return errors.Wrap(err, "unable to initialize vulkan instance")
	}

	b.MakeCommandBuffer = b.makeCommandBuffers

	b.Window.SetMouseButtonCallback(b.mouseButtonChange)
	b.Window.SetScrollCallback(b.mouseScrollChange)
	b.Window.SetKeyCallback(b.keyChange)
	b.Window.SetCharCallback(b.charChange)
	b.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		b.Resize()
	})

	return nil
}

// PrepareToDraw builds the swapchain, pipelines and per slot command pools
// for every registered module
func (b *AppBase) PrepareToDraw() error {
	slots := b.NumFrameSlots()
	for _, g := range b.GraphicsModules {
		pools, err := NewFramePools(b.Device, b.GraphicsQueue.QueueFamily, slots)
		if err != nil {
			return err
		}
		b.framePools[g] = pools
	}

	err := b.GraphicsApp.PrepareToDraw()
	if err != nil {
		return err
	}

	b.log.WithFields(logrus.Fields{
		"slots":  b.NumFrameSlots(),
		"images": b.NumFramebuffers(),
		"extent": b.GetScreenExtent(),
	}).Info("ready to draw")
	return nil
}

// Log returns the logger tagged with the example's name
func (b *AppBase) Log() *logrus.Entry {
	return b.log
}

// FramePool returns the pool g records into for the given slot
func (b *AppBase) FramePool(g GraphicsModule, slot int) *FramePool {
	return b.framePools[g][slot]
}

// Secondary returns a secondary command buffer for g that has begun recording
// inside the frame's render pass
func (b *AppBase) Secondary(g GraphicsModule, frame *vkg.FrameContext) (*vkg.CommandBuffer, error) {
	cmd, err := b.FramePool(g, frame.Slot).Next()
	if err != nil {
		return nil, err
	}
	err = cmd.BeginContinueRenderPass(frame.RenderPass, frame.Framebuffer)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func (b *AppBase) makeCommandBuffers(cmd *vkg.CommandBuffer, frame *vkg.FrameContext) error {
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor(ClearColor[:])
	clearValues[1].SetDepthStencil(1, 0)

	err := cmd.BeginOneTime()
	if err != nil {
		return err
	}

	cmd.CmdBeginRenderPass(frame.RenderPass, frame.Framebuffer, frame.Extent, clearValues, true)

	var buffers []vk.CommandBuffer
	for _, g := range b.GraphicsModules {
		// the slot fence has signaled, nothing recorded for this slot is still in use
		err = b.FramePool(g, frame.Slot).Reset()
		if err != nil {
			return err
		}
		cmds, err := g.CreateCommandBuffers(frame)
		if err != nil {
			return errors.Wrapf(err, "module %T", g)
		}
		buffers = append(buffers, cmds...)
	}

	cmd.CmdExecuteCommands(buffers...)
	cmd.CmdEndRenderPass()
	return cmd.End()
}

// Run draws frames until the window is closed or ctx is done
func (b *AppBase) Run(ctx context.Context) error {
	draw := b.DrawFrame
	if b.Config.Vulkan.SyncFrames {
		draw = b.DrawFrameSync
	}

	for !b.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		glfw.PollEvents()

		width, height := b.Window.GetFramebufferSize()
		if width == 0 || height == 0 {
			// minimized
			glfw.WaitEventsTimeout(0.1)
			continue
		}

		b.NewFrame()

		err := draw()
		if err != nil {
			return err
		}

		b.PostFrame()
	}
	return nil
}

func (b *AppBase) ShouldClose() bool {
	return b.Window.ShouldClose()
}

func (b *AppBase) NewFrame() {
	for _, g := range b.GraphicsModules {
		g.NewFrame(b)
	}
}

func (b *AppBase) PostFrame() {
	for _, g := range b.GraphicsModules {
		g.PostFrame()
	}
}

// Destroy releases modules in reverse registration order, then the device and the window
func (b *AppBase) Destroy() {
	if b.Device != nil {
		err := b.Device.WaitIdle()
		if err != nil {
			b.log.WithError(err).Warn("waiting for device before teardown")
		}
	}

	for i := len(b.GraphicsModules) - 1; i >= 0; i-- {
		g := b.GraphicsModules[i]
		g.Destroy()
		b.framePools[g].Destroy()
		delete(b.framePools, g)
	}

	b.GraphicsApp.Destroy()

	if b.Window != nil {
		b.Window.Destroy()
	}
	glfw.Terminate()
}

// Run opens a window titled title, lets setup register modules and pipeline
// configs, then draws until the window closes or ctx is done
func Run(ctx context.Context, cfg *config.Config, title string, setup func(b *AppBase) error) error {
	b, err := New(cfg, title)
	if err != nil {
		return err
	}
	defer b.Destroy()

	err = b.Init()
	if err != nil {
		return err
	}

	err = setup(b)
	if err != nil {
		return errors.Wrapf(err, "setting up %s", title)
	}

	err = b.PrepareToDraw()
	if err != nil {
		return err
	}

	return b.Run(ctx)
}
