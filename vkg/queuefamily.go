package vkg

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type QueueFamilySlice []*QueueFamily

func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make(QueueFamilySlice, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

func (ql QueueFamilySlice) FilterCompute() QueueFamilySlice {
	return ql.Filter((*QueueFamily).IsCompute)
}

func (ql QueueFamilySlice) FilterPresent(surface vk.Surface) QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.SupportsPresent(surface)
	})
}

func (ql QueueFamilySlice) FilterGraphicsAndPresent(surface vk.Surface) QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsGraphics() && q.SupportsPresent(surface)
	})
}

func (ql QueueFamilySlice) FilterGraphics() QueueFamilySlice {
	return ql.Filter((*QueueFamily).IsGraphics)
}

func (ql QueueFamilySlice) FilterTransfer() QueueFamilySlice {
	return ql.Filter((*QueueFamily).IsTransfer)
}

type QueueFamily struct {
	Index                   int
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) hasFlag(bit vk.QueueFlagBits) bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(bit) != 0
}

func (q *QueueFamily) IsCompute() bool {
	return q.hasFlag(vk.QueueComputeBit)
}

func (q *QueueFamily) IsGraphics() bool {
	return q.hasFlag(vk.QueueGraphicsBit)
}

func (q *QueueFamily) IsTransfer() bool {
	return q.hasFlag(vk.QueueTransferBit)
}

// QueueCount is the number of queues the family provides
func (q *QueueFamily) QueueCount() int {
	return int(q.VKQueueFamilyProperties.QueueCount)
}

func (q *QueueFamily) SupportsPresent(surface vk.Surface) bool {
	if surface == vk.NullSurface {
		return false
	}
	var supportsPresent vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, uint32(q.Index), surface, &supportsPresent)
	return supportsPresent == vk.True
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Queues: %d Compute: %v Graphics: %v Transfer: %v }",
		q.Index, q.QueueCount(), q.IsCompute(), q.IsGraphics(), q.IsTransfer())
}
