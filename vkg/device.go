package vkg

import (
	"fmt"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type Device struct {
	PhysicalDevice *PhysicalDevice
	VKDevice       vk.Device
	// EnabledFeatures are the features the device was created with
	EnabledFeatures vk.PhysicalDeviceFeatures
}

func (d *Device) Destroy() {
	vk.DestroyDevice(d.VKDevice, nil)
}

func (d *Device) String() string {
	return fmt.Sprintf("{ PhysicalDevice: %s }", d.PhysicalDevice)
}

func (d *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(d.VKDevice))
}

func (d *Device) GetQueue(qf *QueueFamily) *Queue {
	var vkq vk.Queue

	vk.GetDeviceQueue(d.VKDevice, uint32(qf.Index), 0, &vkq)

	return &Queue{
		QueueFamily: qf,
		Device:      d,
		VKQueue:     vkq,
	}
}

type AllocationRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

func (d *Device) AllocateForBuffer(b *Buffer, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	ar := b.AllocationRequirements()
	return d.Allocate(ar.Size, ar.MemoryTypeBits, memoryProperties)
}

func (d *Device) Allocate(sizeInBytes uint64, memoryTypeBits uint32, memoryProperties vk.MemoryPropertyFlagBits) (*DeviceMemory, error) {
	memoryTypeIndex, err := d.PhysicalDevice.FindMemoryType(memoryTypeBits, memoryProperties)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(sizeInBytes),
		MemoryTypeIndex: memoryTypeIndex,
	}

	var deviceMemory vk.DeviceMemory
	err = vk.Error(vk.AllocateMemory(d.VKDevice, &allocateInfo, nil, &deviceMemory))
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d bytes of device memory", sizeInBytes)
	}

	return &DeviceMemory{
		Size:           sizeInBytes,
		Device:         d,
		VKDeviceMemory: deviceMemory,
	}, nil
}

// MappedMemoryRange is implemented by resources living inside mapped memory
type MappedMemoryRange interface {
	VKMappedMemoryRange() vk.MappedMemoryRange
}

// FlushMappedRanges makes host writes to the given ranges visible to the device,
// it is only required for memory that isn't host coherent
func (d *Device) FlushMappedRanges(ranges ...MappedMemoryRange) error {
	r := make([]vk.MappedMemoryRange, len(ranges))
	for i := range ranges {
		r[i] = ranges[i].VKMappedMemoryRange()
	}
	return vk.Error(vk.FlushMappedMemoryRanges(d.VKDevice, uint32(len(r)), r))
}
