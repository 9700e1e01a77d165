package vkg

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const end = "\x00"
const endChar byte = '\x00'

// DestroyAny is a utility function which given an item will try to
// figure out how to destroy it
func (d *Device) DestroyAny(i interface{}) {
	switch t := i.(type) {
	case vk.ImageView:
		vk.DestroyImageView(d.VKDevice, t, nil)
	case vk.Sampler:
		vk.DestroySampler(d.VKDevice, t, nil)
	case vk.DescriptorPool:
		vk.DestroyDescriptorPool(d.VKDevice, t, nil)
	case vk.Buffer:
		vk.DestroyBuffer(d.VKDevice, t, nil)
	case vk.Image:
		vk.DestroyImage(d.VKDevice, t, nil)
	case vk.Pipeline:
		vk.DestroyPipeline(d.VKDevice, t, nil)
	case vk.PipelineCache:
		vk.DestroyPipelineCache(d.VKDevice, t, nil)
	case vk.Fence:
		vk.DestroyFence(d.VKDevice, t, nil)
	case vk.RenderPass:
		vk.DestroyRenderPass(d.VKDevice, t, nil)
	case vk.Semaphore:
		vk.DestroySemaphore(d.VKDevice, t, nil)
	case IDestructable:
		t.Destroy()
	}
}

// ToBytes will take an unsafe.Pointer and length in bytes and convert it
// to a byte slice
func ToBytes(ptr unsafe.Pointer, lenInBytes int) []byte {
	if ptr == nil || lenInBytes == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), lenInBytes)
}

func safeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func safeStrings(list []string) []string {
	ret := make([]string, len(list))
	for i := range list {
		ret[i] = safeString(list[i])
	}
	return ret
}
