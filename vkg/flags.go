package vkg

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

type flagName struct {
	bit  uint32
	name string
}

var bufferUsageNames = []flagName{
	{uint32(vk.BufferUsageTransferSrcBit), "TransferSrc"},
	{uint32(vk.BufferUsageTransferDstBit), "TransferDst"},
	{uint32(vk.BufferUsageUniformTexelBufferBit), "UniformTexel"},
	{uint32(vk.BufferUsageStorageTexelBufferBit), "StorageTexel"},
	{uint32(vk.BufferUsageUniformBufferBit), "Uniform"},
	{uint32(vk.BufferUsageStorageBufferBit), "Storage"},
	{uint32(vk.BufferUsageIndexBufferBit), "Index"},
	{uint32(vk.BufferUsageVertexBufferBit), "Vertex"},
	{uint32(vk.BufferUsageIndirectBufferBit), "Indirect"},
}

var memoryPropertyNames = []flagName{
	{uint32(vk.MemoryPropertyDeviceLocalBit), "DeviceLocal"},
	{uint32(vk.MemoryPropertyHostVisibleBit), "HostVisible"},
	{uint32(vk.MemoryPropertyHostCoherentBit), "HostCoherent"},
	{uint32(vk.MemoryPropertyHostCachedBit), "HostCached"},
	{uint32(vk.MemoryPropertyLazilyAllocatedBit), "LazilyAllocated"},
	{uint32(vk.MemoryPropertyProtectedBit), "Protected"},
}

var memoryHeapNames = []flagName{
	{uint32(vk.MemoryHeapDeviceLocalBit), "DeviceLocal"},
	{uint32(vk.MemoryHeapMultiInstanceBit), "MultiInstance"},
}

func flagsToString(f uint32, names []flagName) string {
	parts := make([]string, 0, len(names))
	var known uint32
	for _, n := range names {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
			known |= n.bit
		}
	}
	if rest := f &^ known; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

func usageToString(usage vk.BufferUsageFlagBits) string {
	return flagsToString(uint32(usage), bufferUsageNames)
}

// MemoryPropertyString renders memory property flags as a readable list
func MemoryPropertyString(f vk.MemoryPropertyFlags) string {
	return flagsToString(uint32(f), memoryPropertyNames)
}

// MemoryHeapString renders memory heap flags as a readable list
func MemoryHeapString(f vk.MemoryHeapFlags) string {
	return flagsToString(uint32(f), memoryHeapNames)
}
