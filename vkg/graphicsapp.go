package vkg

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

// DepthFormat is the format of the depth attachment created by GraphicsApp
const DepthFormat = vk.FormatD32Sfloat

// GraphicsApp is a utility object which implements many of the core requirements to
// get to a functioning Vulkan app. It will setup the appropriate devices and do many
// of the necissary preprations to begin drawing.
//
// Frames are drawn through a ring of FramesInFlight slots, each with its own
// primary command buffer, fence and pair of semaphores, so the CPU can record
// a frame while the GPU is still rendering the previous ones.
//
// See https://vulkan-tutorial.com/ for a good walkthrough of what this code does.
type GraphicsApp struct {
	Instance *Instance
	App      *App

	Window    *glfw.Window
	VKSurface vk.Surface

	Device         *Device
	PhysicalDevice *PhysicalDevice
	// DeviceIndex selects the physical device, -1 picks the first suitable one
	DeviceIndex int
	// Validation installs the debug report callback once the instance exists
	Validation bool

	GraphicsPipelineConfigs map[string]IGraphicsPipelineConfig
	// Generated from GraphicsPipelineConfigs
	GraphicsPipelines map[string]*GraphicsPipeline

	ResourceManager *ResourceManager

	GraphicsQueue *Queue
	PresentQueue  *Queue
	PipelineCache *PipelineCache

	GraphicsCommandPool *CommandPool

	// FramesInFlight is the number of frame slots, it is clamped to 1..MaxFramesInFlight
	// when PrepareToDraw is called
	FramesInFlight int
	frames         *FrameRing
	sync           []frameSync

	screenExtent vk.Extent2D

	Swapchain           *Swapchain
	SwapchainImages     []*Image
	SwapchainImageViews []*ImageView
	DepthImage          *BoundImage
	DepthImageView      *ImageView
	Framebuffers        []vk.Framebuffer

	resized bool

	VKRenderPass vk.RenderPass

	// ConfigureRenderPass is a call back which can be supplied to
	// allow for custimization of the render pass
	ConfigureRenderPass func(renderPass *vk.RenderPassCreateInfo)
	// MakeCommandBuffer records the primary command buffer of a frame, the
	// buffer has already been reset
	MakeCommandBuffer func(command *CommandBuffer, frame *FrameContext) error
}

// NewGraphicsApp creates a new graphics app with the given name and version
func NewGraphicsApp(name string, version Version) (*GraphicsApp, error) {
	return &GraphicsApp{
		App:         &App{Name: name, EngineName: "vkg", Version: version},
		DeviceIndex: -1,
	}, nil
}

// PhysicalDevices returns a list of physical devices
func (p *GraphicsApp) PhysicalDevices() ([]*PhysicalDevice, error) {
	if p.Instance == nil {
		return nil, errors.New("platform hasn't been initialized yet")
	}
	return p.Instance.PhysicalDevices()
}

// EnableLayer enables a specific layer if it is supported
func (p *GraphicsApp) EnableLayer(layer string) bool {
	_, err := p.App.EnableLayer(layer)
	return err == nil
}

// EnableExtension enables a specific extension if it is supported
func (p *GraphicsApp) EnableExtension(extension string) bool {
	supportedExtensions, err := p.SupportedExtensions()
	if err != nil || !contains(supportedExtensions, extension) {
		return false
	}
	p.App.EnableExtension(extension)
	return true
}

// SupportedExtensions returns alist of supported extensions
func (p *GraphicsApp) SupportedExtensions() ([]string, error) {
	return SupportedExtensions()
}

// SupportedLayers returns a list of supported layers
func (p *GraphicsApp) SupportedLayers() ([]string, error) {
	return SupportedLayers()
}

// EnableDebugging enables the validation layer, it must be called before Init
func (p *GraphicsApp) EnableDebugging() error {
	if p.Instance != nil {
		return errors.New("debugging must be enabled prior to initialization")
	}
	err := p.App.EnableDebugging()
	if err != nil {
		return err
	}
	p.Validation = true
	return nil
}

// CreateGraphicsPipelineConfig creates a graphic pipeline configuration for customization
func (p *GraphicsApp) CreateGraphicsPipelineConfig() *GraphicsPipelineConfig {
	return p.Device.CreateGraphicsPipelineConfig()
}

// AddGraphicsPipelineConfig registers a config, the pipeline is built by PrepareToDraw
// and rebuilt whenever the swapchain is recreated
func (p *GraphicsApp) AddGraphicsPipelineConfig(name string, config IGraphicsPipelineConfig) {
	if p.GraphicsPipelineConfigs == nil {
		p.GraphicsPipelineConfigs = make(map[string]IGraphicsPipelineConfig)
	}
	p.GraphicsPipelineConfigs[name] = config
}

// NumFramebuffers returns the number of framebuffers that have been created
func (p *GraphicsApp) NumFramebuffers() int {
	return len(p.Framebuffers)
}

// NumFrameSlots is the number of frame slots, valid after PrepareToDraw
func (p *GraphicsApp) NumFrameSlots() int {
	if p.frames == nil {
		return ClampFramesInFlight(p.FramesInFlight)
	}
	return p.frames.Len()
}

// Init creates the instance, surface, device, queues, command pool and resource manager
func (p *GraphicsApp) Init() error {
	var err error

	p.Instance, err = p.App.CreateInstance()
	if err != nil {
		return err
	}

	if p.Validation {
		err = p.Instance.UseDefaultDebugCallback()
		if err != nil {
			log.WithError(err).Warn("validation requested but the debug callback could not be installed")
		}
	}

	if p.Window != nil && p.VKSurface == vk.NullSurface {
		surface, err := p.Window.CreateWindowSurface(p.Instance.VKInstance, nil)
		if err != nil {
			return errors.Wrap(err, "creating window surface")
		}
		p.VKSurface = vk.SurfaceFromPointer(surface)
	}

	physicalDevices, err := p.Instance.PhysicalDevices()
	if err != nil {
		return err
	}

	pdevice, err := SelectPhysicalDevice(physicalDevices, p.DeviceIndex, func(d *PhysicalDevice) bool {
		qf, err := d.QueueFamilies()
		if err != nil {
			return false
		}
		if p.VKSurface == vk.NullSurface {
			return len(qf.FilterGraphics()) > 0
		}
		return len(qf.FilterGraphics()) > 0 && len(qf.FilterPresent(p.VKSurface)) > 0
	})
	if err != nil {
		return err
	}

	queues, err := pdevice.QueueFamilies()
	if err != nil {
		return errors.Wrap(err, "loading device queue families")
	}

	var graphics, present *QueueFamily
	if p.VKSurface == vk.NullSurface {
		graphics = queues.FilterGraphics()[0]
		present = graphics
	} else if both := queues.FilterGraphicsAndPresent(p.VKSurface); len(both) > 0 {
		graphics, present = both[0], both[0]
	} else {
		graphics = queues.FilterGraphics()[0]
		present = queues.FilterPresent(p.VKSurface)[0]
	}

	var enabledExtensions []string
	if p.Window != nil {
		enabledExtensions = []string{"VK_KHR_swapchain"}
	}

	ldevice, err := pdevice.CreateLogicalDeviceWithOptions(QueueFamilySlice{graphics, present}, &CreateDeviceOptions{
		EnabledExtensions: enabledExtensions,
	})
	if err != nil {
		return err
	}

	p.Device = ldevice
	p.PhysicalDevice = pdevice
	p.GraphicsQueue = ldevice.GetQueue(graphics)
	p.PresentQueue = ldevice.GetQueue(present)

	log.WithFields(logrus.Fields{
		"device":   pdevice.DeviceName,
		"graphics": graphics.Index,
		"present":  present.Index,
	}).Info("selected physical device")

	p.GraphicsCommandPool, err = p.Device.CreateCommandPool(p.GraphicsQueue.QueueFamily)
	if err != nil {
		return err
	}

	p.ResourceManager = p.Device.CreateResourceManager()

	return nil
}

// SetWindow sets the GLFW window for the graphics app
func (p *GraphicsApp) SetWindow(window *glfw.Window) error {
	if p.Instance != nil {
		return errors.New("window must be set prior to initialization")
	}

	p.Window = window

	for _, ext := range p.Window.GetRequiredInstanceExtensions() {
		if !p.EnableExtension(ext) {
			return errors.Newf("extension '%s' required to enable glfw is not supported by vulkan", ext)
		}
	}

	p.refreshScreenExtent()
	return nil
}

// PrepareToDraw creates the nescissary objects required to start drawing, it must be
// called after Init and after MakeCommandBuffer is set
func (p *GraphicsApp) PrepareToDraw() error {
	if p.MakeCommandBuffer == nil {
		return ErrNoCommandRecorder
	}

	var err error
	p.PipelineCache, err = p.Device.CreatePipelineCache()
	if err != nil {
		return err
	}

	err = p.createSizeDependent(nil)
	if err != nil {
		return err
	}

	p.frames = NewFrameRing(p.FramesInFlight)
	p.FramesInFlight = p.frames.Len()
	return p.createSyncObjects()
}

// createSizeDependent builds everything that depends on the surface size
func (p *GraphicsApp) createSizeDependent(old *Swapchain) error {
	err := p.createSwapchainAndImages(old)
	if err != nil {
		return err
	}
	err = p.createRenderer()
	if err != nil {
		return err
	}
	err = p.createGraphicsPipelines()
	if err != nil {
		return err
	}
	err = p.createDepthImage()
	if err != nil {
		return err
	}
	return p.createFramebuffers()
}

// destroySizeDependent tears down everything createSizeDependent built except
// the swapchain itself, which is handed to the replacement as the old swapchain
func (p *GraphicsApp) destroySizeDependent() {
	p.destroyFramebuffers()
	p.destroyDepthImage()
	p.destroyGraphicsPipelines()
	p.destroyRenderer()
	for _, view := range p.SwapchainImageViews {
		view.Destroy()
	}
	p.SwapchainImageViews = nil
	p.SwapchainImages = nil
}

// recreateSwapchain rebuilds the size dependent objects, frame sync objects are kept
func (p *GraphicsApp) recreateSwapchain() error {
	p.refreshScreenExtent()
	if p.screenExtent.Width == 0 || p.screenExtent.Height == 0 {
		// minimized, try again once the window has a size
		p.resized = true
		return nil
	}

	err := p.Device.WaitIdle()
	if err != nil {
		return err
	}

	p.destroySizeDependent()
	old := p.Swapchain
	err = p.createSizeDependent(old)
	old.Destroy()
	if err != nil {
		return errors.Wrap(err, "recreating swapchain")
	}

	p.resized = false
	log.WithField("extent", p.Swapchain.Extent).Debug("recreated swapchain")
	return nil
}

// Resize is used to signal that the swapchain must be recreated
func (p *GraphicsApp) Resize() {
	p.refreshScreenExtent()
	p.resized = true
}

// DrawFrame records and submits one frame in the current slot and presents it.
// It only blocks when the slot's previous frame is still on the GPU.
func (p *GraphicsApp) DrawFrame() error {
	if p.resized {
		return p.recreateSwapchain()
	}

	slot := p.frames.Current()
	s := &p.sync[slot]

	err := p.Device.VKWaitForFences(true, NoTimeout, s.inFlight)
	if err != nil {
		return err
	}

	var imageIndex uint32
	res := vk.AcquireNextImage(p.Device.VKDevice, p.Swapchain.VKSwapchain, vk.MaxUint64, s.imageAvailable, vk.NullFence, &imageIndex)
	switch res {
	case vk.ErrorOutOfDate:
		return p.recreateSwapchain()
	case vk.Success, vk.Suboptimal:
	default:
		return errors.Wrap(vk.Error(res), "acquiring swapchain image")
	}
	suboptimal := res == vk.Suboptimal

	// only reset once work that signals the fence is certain to be submitted
	err = p.Device.VKResetFences(s.inFlight)
	if err != nil {
		return err
	}

	err = s.cmd.Reset()
	if err != nil {
		return err
	}
	err = p.MakeCommandBuffer(s.cmd, &FrameContext{
		Slot:        slot,
		ImageIndex:  int(imageIndex),
		RenderPass:  p.VKRenderPass,
		Framebuffer: p.Framebuffers[imageIndex],
		Extent:      p.Swapchain.Extent,
	})
	if err != nil {
		return errors.Wrap(err, "recording frame")
	}

	err = p.GraphicsQueue.SubmitFrame(s.imageAvailable, s.renderFinished, s.inFlight, s.cmd.VK())
	if err != nil {
		return err
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{s.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{p.Swapchain.VKSwapchain},
		PImageIndices:      []uint32{imageIndex},
	}
	res = vk.QueuePresent(p.PresentQueue.VKQueue, &presentInfo)

	p.frames.Advance()

	switch {
	case res == vk.ErrorOutOfDate || res == vk.Suboptimal || suboptimal || p.resized:
		return p.recreateSwapchain()
	case res != vk.Success:
		return errors.Wrap(vk.Error(res), "presenting")
	}
	return nil
}

// DrawFrameSync draws a frame and waits for the device to go idle. It does not
// utilize the GPU particularly well but guarantees that no resource used by the
// frame is still in use when it returns.
func (p *GraphicsApp) DrawFrameSync() error {
	err := p.DrawFrame()
	if err != nil {
		return err
	}
	return p.Device.WaitIdle()
}

func (p *GraphicsApp) createGraphicsPipelines() error {
	if len(p.GraphicsPipelineConfigs) == 0 {
		return nil
	}

	names := make([]string, 0, len(p.GraphicsPipelineConfigs))
	for name := range p.GraphicsPipelineConfigs {
		names = append(names, name)
	}
	sort.Strings(names)

	configs := make([]vk.GraphicsPipelineCreateInfo, len(names))
	for i, name := range names {
		config, err := p.GraphicsPipelineConfigs[name].VKGraphicsPipelineCreateInfo(p.Swapchain.Extent)
		if err != nil {
			return errors.Wrapf(err, "generating graphics pipeline config '%s'", name)
		}
		config.RenderPass = p.VKRenderPass
		configs[i] = config
	}

	graphicsPipelines := make([]vk.Pipeline, len(configs))
	err := vk.Error(vk.CreateGraphicsPipelines(p.Device.VKDevice, p.PipelineCache.VKPipelineCache,
		uint32(len(configs)), configs, nil, graphicsPipelines))
	if err != nil {
		return errors.Wrapf(err, "creating graphics pipelines %v", names)
	}

	p.GraphicsPipelines = make(map[string]*GraphicsPipeline, len(names))
	for i, name := range names {
		p.GraphicsPipelines[name] = &GraphicsPipeline{
			Device:     p.Device,
			Name:       name,
			VKPipeline: graphicsPipelines[i],
		}
	}
	return nil
}

func (p *GraphicsApp) destroyGraphicsPipelines() {
	for _, g := range p.GraphicsPipelines {
		g.Destroy()
	}
	p.GraphicsPipelines = nil
}

func (p *GraphicsApp) refreshScreenExtent() {
	if p.Window != nil {
		width, height := p.Window.GetFramebufferSize()
		p.screenExtent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	}
}

// GetScreenExtent gets the current screen extents
func (p *GraphicsApp) GetScreenExtent() vk.Extent2D {
	if p.Swapchain != nil {
		return p.Swapchain.Extent
	}
	return p.screenExtent
}

// Destroy tears down the graphics application, the window is left to the caller
func (p *GraphicsApp) Destroy() {
	if p.Device == nil {
		if p.Instance != nil {
			p.Instance.Destroy()
		}
		return
	}

	err := p.Device.WaitIdle()
	if err != nil {
		log.WithError(err).Warn("waiting for device before teardown")
	}

	p.destroySyncObjects()

	if p.Swapchain != nil {
		p.destroySizeDependent()
		p.Swapchain.Destroy()
		p.Swapchain = nil
	}

	for _, g := range p.GraphicsPipelineConfigs {
		g.Destroy()
	}

	if p.PipelineCache != nil {
		p.PipelineCache.Destroy()
		p.PipelineCache = nil
	}

	if p.ResourceManager != nil {
		p.ResourceManager.Destroy()
	}
	if p.GraphicsCommandPool != nil {
		p.GraphicsCommandPool.Destroy()
	}

	if p.VKSurface != vk.NullSurface {
		vk.DestroySurface(p.Instance.VKInstance, p.VKSurface, nil)
		p.VKSurface = vk.NullSurface
	}

	p.Device.Destroy()
	p.Instance.Destroy()
}

// VKRenderPassCreateInfo is a utility function which creates the render pass info, the implementing application
// can implement the ConfigureRenderPass function to customize the render pass
func (p *GraphicsApp) VKRenderPassCreateInfo() vk.RenderPassCreateInfo {
	return renderPassCreateInfo(p.Swapchain.Format)
}

// renderPassCreateInfo describes a single subpass with a cleared color
// attachment that is presented and a cleared depth attachment
func renderPassCreateInfo(colorFormat vk.Format) vk.RenderPassCreateInfo {
	attachmentDescriptions := []vk.AttachmentDescription{
		{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	subpassDescriptions := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}}

	stages := vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(stages),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(stages),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachmentDescriptions)),
		PAttachments:    attachmentDescriptions,
		SubpassCount:    uint32(len(subpassDescriptions)),
		PSubpasses:      subpassDescriptions,
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
}

func (p *GraphicsApp) createRenderer() error {
	createInfo := p.VKRenderPassCreateInfo()
	if p.ConfigureRenderPass != nil {
		p.ConfigureRenderPass(&createInfo)
	}

	var renderPass vk.RenderPass
	err := vk.Error(vk.CreateRenderPass(p.Device.VKDevice, &createInfo, nil, &renderPass))
	if err != nil {
		return errors.Wrap(err, "creating render pass")
	}
	p.VKRenderPass = renderPass
	return nil
}

func (p *GraphicsApp) destroyRenderer() {
	if p.VKRenderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(p.Device.VKDevice, p.VKRenderPass, nil)
		p.VKRenderPass = vk.NullRenderPass
	}
}

func (p *GraphicsApp) createSwapchainAndImages(old *Swapchain) error {
	swapchain, err := p.Device.CreateSwapchain(p.VKSurface, p.GraphicsQueue, p.PresentQueue, &CreateSwapchainOptions{
		ActualSize:   p.screenExtent,
		OldSwapchain: old,
	})
	if err != nil {
		return err
	}
	p.Swapchain = swapchain

	images, err := swapchain.GetImages()
	if err != nil {
		return err
	}
	p.SwapchainImages = images

	p.SwapchainImageViews = make([]*ImageView, 0, len(images))
	for _, image := range images {
		view, err := image.CreateImageView()
		if err != nil {
			return err
		}
		p.SwapchainImageViews = append(p.SwapchainImageViews, view)
	}
	return nil
}

func (p *GraphicsApp) createDepthImage() error {
	var err error
	p.DepthImage, err = p.Device.CreateBoundImage(p.Swapchain.Extent, DepthFormat, vk.ImageTilingOptimal,
		vk.ImageUsageDepthStencilAttachmentBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return errors.Wrap(err, "creating depth image")
	}
	p.DepthImageView, err = p.DepthImage.CreateImageView()
	return err
}

func (p *GraphicsApp) destroyDepthImage() {
	if p.DepthImageView != nil {
		p.DepthImageView.Destroy()
		p.DepthImageView = nil
	}
	if p.DepthImage != nil {
		p.DepthImage.Destroy()
		p.DepthImage = nil
	}
}

func (p *GraphicsApp) createFramebuffers() error {
	p.Framebuffers = make([]vk.Framebuffer, len(p.SwapchainImageViews))
	for i, view := range p.SwapchainImageViews {
		attachments := []vk.ImageView{
			view.VKImageView,
			p.DepthImageView.VKImageView,
		}
		fbCreateInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      p.VKRenderPass,
			Layers:          1,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           p.Swapchain.Extent.Width,
			Height:          p.Swapchain.Extent.Height,
		}
		err := vk.Error(vk.CreateFramebuffer(p.Device.VKDevice, &fbCreateInfo, nil, &p.Framebuffers[i]))
		if err != nil {
			return errors.Wrap(err, "creating framebuffer")
		}
	}
	return nil
}

func (p *GraphicsApp) destroyFramebuffers() {
	for i := range p.Framebuffers {
		if p.Framebuffers[i] != vk.NullFramebuffer {
			vk.DestroyFramebuffer(p.Device.VKDevice, p.Framebuffers[i], nil)
		}
	}
	p.Framebuffers = nil
}

func (p *GraphicsApp) createSyncObjects() error {
	cmds, err := p.GraphicsCommandPool.AllocateBuffers(p.frames.Len(), vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}

	p.sync = make([]frameSync, p.frames.Len())
	for i := range p.sync {
		s := &p.sync[i]
		s.cmd = cmds[i]
		s.imageAvailable, err = p.Device.VKCreateSemaphore()
		if err != nil {
			return err
		}
		s.renderFinished, err = p.Device.VKCreateSemaphore()
		if err != nil {
			return err
		}
		// signaled so the first wait on each slot returns immediately
		s.inFlight, err = p.Device.VKCreateFence(true)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GraphicsApp) destroySyncObjects() {
	for _, s := range p.sync {
		p.Device.VKDestroySemaphore(s.imageAvailable)
		p.Device.VKDestroySemaphore(s.renderFinished)
		if s.inFlight != vk.NullFence {
			p.Device.VKDestroyFence(s.inFlight)
		}
		if s.cmd != nil {
			p.GraphicsCommandPool.FreeBuffer(s.cmd)
		}
	}
	p.sync = nil
}
