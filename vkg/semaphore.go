package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// VKCreateSemaphore creates a native vulkan semaphore object
func (d *Device) VKCreateSemaphore() (vk.Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var sema vk.Semaphore
	err := vk.Error(vk.CreateSemaphore(d.VKDevice, &createInfo, nil, &sema))
	if err != nil {
		return vk.NullSemaphore, errors.Wrap(err, "creating semaphore")
	}
	return sema, nil
}

func (d *Device) VKDestroySemaphore(s vk.Semaphore) {
	if s != vk.NullSemaphore {
		vk.DestroySemaphore(d.VKDevice, s, nil)
	}
}
