package vkg

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type Image struct {
	Device   *Device
	VKImage  vk.Image
	VKFormat vk.Format
	Extent   vk.Extent2D
	// Size is the number of bytes of memory the image requires once bound
	Size uint64
}

func (i *Image) VKMemoryRequirements() vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.Device.VKDevice, i.VKImage, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func (i *Image) AllocationRequirements() *AllocationRequirements {
	mr := i.VKMemoryRequirements()
	return &AllocationRequirements{
		Size:           uint64(mr.Size),
		Alignment:      uint64(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

// CreateImage creates a single mip, single layer 2D image
func (d *Device) CreateImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlags) (*Image, error) {
	return d.CreateImageWithOptions(extent, format, tiling, vk.ImageUsageFlagBits(usage))
}

func (d *Device) CreateImageWithOptions(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits) (*Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(usage),
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	var image vk.Image
	err := vk.Error(vk.CreateImage(d.VKDevice, &imageInfo, nil, &image))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %dx%d image", extent.Width, extent.Height)
	}

	ret := &Image{
		Device:   d,
		VKImage:  image,
		VKFormat: format,
		Extent:   extent,
	}
	ret.Size = uint64(ret.VKMemoryRequirements().Size)
	return ret, nil
}

func (i *Image) String() string {
	return fmt.Sprintf("{Image %dx%d Format: %d Size: %d}", i.Extent.Width, i.Extent.Height, i.VKFormat, i.Size)
}

func (i *Image) Destroy() {
	if i.VKImage != vk.NullImage {
		vk.DestroyImage(i.Device.VKDevice, i.VKImage, nil)
		i.VKImage = vk.NullImage
	}
}

// BoundImage is an image with its own dedicated memory, used for render
// targets such as the depth buffer
type BoundImage struct {
	Image
	DeviceMemory *DeviceMemory
}

func (d *Device) CreateBoundImage(extent vk.Extent2D, format vk.Format, tiling vk.ImageTiling, usage vk.ImageUsageFlagBits, props vk.MemoryPropertyFlagBits) (*BoundImage, error) {
	img, err := d.CreateImageWithOptions(extent, format, tiling, usage)
	if err != nil {
		return nil, err
	}

	ar := img.AllocationRequirements()
	mem, err := d.Allocate(ar.Size, ar.MemoryTypeBits, props)
	if err != nil {
		img.Destroy()
		return nil, err
	}

	err = vk.Error(vk.BindImageMemory(d.VKDevice, img.VKImage, mem.VKDeviceMemory, 0))
	if err != nil {
		mem.Destroy()
		img.Destroy()
		return nil, errors.Wrap(err, "binding image memory")
	}

	return &BoundImage{Image: *img, DeviceMemory: mem}, nil
}

func (b *BoundImage) Destroy() {
	b.Image.Destroy()
	if b.DeviceMemory != nil {
		b.DeviceMemory.Destroy()
		b.DeviceMemory = nil
	}
}

// isDepthFormat reports whether format carries a depth component
func isDepthFormat(format vk.Format) bool {
	switch format {
	case vk.FormatD16Unorm, vk.FormatX8D24UnormPack32, vk.FormatD32Sfloat,
		vk.FormatD16UnormS8Uint, vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint:
		return true
	}
	return false
}

// aspectForFormat returns the image aspect a view or barrier of format should cover
func aspectForFormat(format vk.Format) vk.ImageAspectFlags {
	if !isDepthFormat(format) {
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
	mask := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	switch format {
	case vk.FormatD16UnormS8Uint, vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint:
		mask |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return mask
}
