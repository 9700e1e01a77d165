package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestUsageToString(t *testing.T) {
	tests := []struct {
		usage vk.BufferUsageFlagBits
		want  string
	}{
		{0, "None"},
		{vk.BufferUsageVertexBufferBit, "Vertex"},
		{vk.BufferUsageVertexBufferBit | vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit, "TransferDst|Index|Vertex"},
		{vk.BufferUsageFlagBits(1 << 30), "0x40000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, usageToString(tt.usage))
	}
}

func TestMemoryPropertyString(t *testing.T) {
	assert.Equal(t, "DeviceLocal", MemoryPropertyString(vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)))
	assert.Equal(t, "HostVisible|HostCoherent",
		MemoryPropertyString(vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)))
	assert.Equal(t, "None", MemoryPropertyString(0))
}

func TestMemoryHeapString(t *testing.T) {
	assert.Equal(t, "DeviceLocal", MemoryHeapString(vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit)))
	assert.Equal(t, "None", MemoryHeapString(0))
}
