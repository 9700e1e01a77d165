package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Sampler describes how shaders read from a sampled image
type Sampler struct {
	Device    *Device
	VKSampler vk.Sampler
}

// CreateSampler creates a sampler with the given filter and address mode for
// all three coordinates, without anisotropy or mipmapping
func (d *Device) CreateSampler(filter vk.Filter, mode vk.SamplerAddressMode) (*Sampler, error) {
	createInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            mode,
		AddressModeV:            mode,
		AddressModeW:            mode,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorFloatOpaqueWhite,
		UnnormalizedCoordinates: vk.False,
	}

	var sampler vk.Sampler
	err := vk.Error(vk.CreateSampler(d.VKDevice, &createInfo, nil, &sampler))
	if err != nil {
		return nil, errors.Wrap(err, "creating sampler")
	}
	return &Sampler{Device: d, VKSampler: sampler}, nil
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.Device.VKDevice, s.VKSampler, nil)
}
