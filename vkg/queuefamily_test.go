package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func family(index int, flags vk.QueueFlagBits) *QueueFamily {
	return &QueueFamily{
		Index: index,
		VKQueueFamilyProperties: vk.QueueFamilyProperties{
			QueueFlags: vk.QueueFlags(flags),
			QueueCount: 1,
		},
	}
}

func TestQueueFamilyFilters(t *testing.T) {
	qs := QueueFamilySlice{
		family(0, vk.QueueGraphicsBit|vk.QueueComputeBit|vk.QueueTransferBit),
		family(1, vk.QueueComputeBit),
		family(2, vk.QueueTransferBit),
	}
	assert.Len(t, qs.FilterGraphics(), 1)
	assert.Len(t, qs.FilterCompute(), 2)
	assert.Len(t, qs.FilterTransfer(), 2)
	assert.Equal(t, 1, qs.FilterCompute()[1].Index)
	assert.Empty(t, qs.FilterPresent(vk.NullSurface))
	assert.Contains(t, qs[0].String(), "Graphics: true")
}
