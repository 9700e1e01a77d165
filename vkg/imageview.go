package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type ImageView struct {
	Device      *Device
	VKImageView vk.ImageView
}

// CreateImageView creates a view whose aspect is derived from the image format
func (i *Image) CreateImageView() (*ImageView, error) {
	return i.CreateImageViewWithAspectMask(aspectForFormat(i.VKFormat))
}

func (i *Image) CreateImageViewWithAspectMask(mask vk.ImageAspectFlags) (*ImageView, error) {
	return i.Device.CreateImageView(i.VKImage, i.VKFormat, mask)
}

// CreateImageView creates a 2D view of a native image, swapchain images are not
// wrapped by Image so they come through here
func (d *Device) CreateImageView(image vk.Image, format vk.Format, mask vk.ImageAspectFlags) (*ImageView, error) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: mask,
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	err := vk.Error(vk.CreateImageView(d.VKDevice, &createInfo, nil, &view))
	if err != nil {
		return nil, errors.Wrap(err, "creating image view")
	}
	return &ImageView{Device: d, VKImageView: view}, nil
}

func (i *ImageView) Destroy() {
	if i.VKImageView != vk.NullImageView {
		vk.DestroyImageView(i.Device.VKDevice, i.VKImageView, nil)
		i.VKImageView = vk.NullImageView
	}
}
