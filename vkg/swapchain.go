package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	PresentMode vk.PresentMode
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	if s.VKSwapchain != vk.NullSwapchain {
		vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
		s.VKSwapchain = vk.NullSwapchain
	}
}

// GetImages returns the images owned by the swapchain, they must not be destroyed
func (s *Swapchain) GetImages() ([]*Image, error) {
	var imageCount uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil))
	if err != nil {
		return nil, errors.Wrap(err, "getting swapchain images")
	}

	swapchainImages := make([]vk.Image, imageCount)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, swapchainImages))
	if err != nil {
		return nil, errors.Wrap(err, "getting swapchain images")
	}

	ret := make([]*Image, imageCount)
	for i := range ret {
		ret[i] = &Image{
			Device:   s.Device,
			VKImage:  swapchainImages[i],
			VKFormat: s.Format,
			Extent:   s.Extent,
		}
	}
	return ret, nil
}

type CreateSwapchainOptions struct {
	OldSwapchain *Swapchain
	// ActualSize is the window framebuffer size, used when the surface leaves the extent to us
	ActualSize vk.Extent2D
	// DesiredNumSwapchainImages overrides the image count chosen from the surface capabilities
	DesiredNumSwapchainImages int
}

// choosePresentMode prefers MAILBOX and falls back to FIFO, which is always available
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseSurfaceFormat prefers B8G8R8A8_UNORM with a non linear sRGB color space
// and falls back to the first reported format
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	// a single undefined entry means the surface has no preference
	if len(formats) == 1 && formats[0].Format == vk.FormatUndefined {
		return preferred, nil
	}
	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f, nil
		}
	}
	return formats[0], nil
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chooseExtent uses the surface's current extent unless the surface lets the
// swapchain decide, in which case the framebuffer size is clamped to the limits
func chooseExtent(caps vk.SurfaceCapabilities, framebuffer vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(framebuffer.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(framebuffer.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, a max of 0 means unlimited
func chooseImageCount(minCount, maxCount uint32) uint32 {
	n := minCount + 1
	if maxCount != 0 && n > maxCount {
		n = maxCount
	}
	return n
}

func (p *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options *CreateSwapchainOptions) (*Swapchain, error) {
	if options == nil {
		options = &CreateSwapchainOptions{}
	}

	modes, err := p.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}
	presentMode := choosePresentMode(modes)

	formats, err := p.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}
	format, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	caps, err := p.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}
	extent := chooseExtent(*caps, options.ActualSize)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, errors.New("cannot create a swapchain for a zero sized surface")
	}

	imageCount := chooseImageCount(caps.MinImageCount, caps.MaxImageCount)
	if options.DesiredNumSwapchainImages > 0 {
		imageCount = uint32(options.DesiredNumSwapchainImages)
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		PresentMode:      presentMode,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageArrayLayers: 1,
		Clipped:          vk.True,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		OldSwapchain:     vk.NullSwapchain,
		ImageSharingMode: vk.SharingModeExclusive,
	}
	if options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}
	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(graphicsQueue.QueueFamily.Index), uint32(presentQueue.QueueFamily.Index)}
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(p.VKDevice, &createInfo, nil, &swapchain))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %dx%d swapchain", extent.Width, extent.Height)
	}

	log.WithField("extent", extent).WithField("images", imageCount).WithField("present_mode", presentMode).Debug("created swapchain")

	return &Swapchain{
		VKSwapchain: swapchain,
		Device:      p,
		Extent:      extent,
		Format:      format.Format,
		PresentMode: presentMode,
	}, nil
}
