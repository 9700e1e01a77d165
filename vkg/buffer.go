package vkg

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer are used to map hunks of data that are then bound to resources used by the pipeline
// and command buffers to render data.
type Buffer struct {
	Device   *Device
	VKBuffer vk.Buffer
	Size     uint64
	Usage    vk.BufferUsageFlagBits
}

func (d *Device) CreateBuffer(sizeInBytes uint64) (*Buffer, error) {
	return d.CreateBufferWithOptions(sizeInBytes, vk.BufferUsageStorageBufferBit, vk.SharingModeExclusive)
}

func (d *Device) CreateBufferWithOptions(sizeInBytes uint64, usage vk.BufferUsageFlagBits, sharing vk.SharingMode) (*Buffer, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: sharing,
	}

	var buffer vk.Buffer
	err := vk.Error(vk.CreateBuffer(d.VKDevice, &bufferCreateInfo, nil, &buffer))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %d byte buffer (%s)", sizeInBytes, usageToString(usage))
	}

	return &Buffer{
		Device:   d,
		VKBuffer: buffer,
		Size:     sizeInBytes,
		Usage:    usage,
	}, nil
}

func (b *Buffer) VKMemoryRequirements() vk.MemoryRequirements {
	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.Device.VKDevice, b.VKBuffer, &memoryRequirements)
	memoryRequirements.Deref()
	return memoryRequirements
}

// DSInfo describes the whole buffer for use in a descriptor set
func (b *Buffer) DSInfo(offset int) vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.VKBuffer,
		Offset: vk.DeviceSize(offset),
		Range:  vk.DeviceSize(b.Size),
	}
}

func (b *Buffer) AllocationRequirements() *AllocationRequirements {
	mr := b.VKMemoryRequirements()
	return &AllocationRequirements{
		Size:           uint64(mr.Size),
		Alignment:      uint64(mr.Alignment),
		MemoryTypeBits: mr.MemoryTypeBits,
	}
}

func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return vk.Error(vk.BindBufferMemory(b.Device.VKDevice, b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset)))
}

func (b *Buffer) String() string {
	return fmt.Sprintf("{Buffer Size: %d Usage: %s}", b.Size, usageToString(b.Usage))
}

func (b *Buffer) Destroy() {
	if b.VKBuffer != vk.NullBuffer {
		vk.DestroyBuffer(b.Device.VKDevice, b.VKBuffer, nil)
		b.VKBuffer = vk.NullBuffer
	}
}
