package vkg

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the host or on the device
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	MapCount       int32
	Ptr            unsafe.Pointer
}

// IsMapped returns true if the device memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return atomic.LoadInt32(&d.MapCount) > 0
}

// Destroy destorys this memory
func (d *DeviceMemory) Destroy() {
	if d.IsMapped() {
		d.Unmap()
	}
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

// MapCopyUnmap will map this memory, copy the specified data to it and unmap
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	return d.MapCopyUnmapAt(data, 0)
}

// MapCopyUnmapAt maps len(data) bytes at offset, copies data into them and unmaps
func (d *DeviceMemory) MapCopyUnmapAt(data []byte, offset uint64) error {
	if uint64(len(data))+offset > d.Size {
		return errors.Newf("copy of %d bytes at offset %d exceeds memory size %d", len(data), offset, d.Size)
	}
	pm, err := d.MapWithOffset(uint64(len(data)), offset)
	if err != nil {
		return err
	}
	copy(ToBytes(pm, len(data)), data)
	d.Unmap()
	return nil
}

// MapWithOffset will map the memory with a certain size and offset
func (d *DeviceMemory) MapWithOffset(size uint64, offset uint64) (unsafe.Pointer, error) {
	var res unsafe.Pointer
	err := vk.Error(vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &res))
	if err != nil {
		return nil, errors.Wrap(err, "mapping device memory")
	}
	atomic.AddInt32(&d.MapCount, 1)
	return res, nil
}

// Map will map the entirety of this memory, the pointer is kept in Ptr until Unmap is called
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	if d.Ptr != nil {
		return d.Ptr, nil
	}
	res, err := d.MapWithOffset(d.Size, 0)
	if err != nil {
		return nil, err
	}
	d.Ptr = res
	return res, nil
}

// MapWithSize will map this memory starting at offset 0 with a particular size
func (d *DeviceMemory) MapWithSize(size int) (unsafe.Pointer, error) {
	return d.MapWithOffset(uint64(size), 0)
}

// Unmap this memory
func (d *DeviceMemory) Unmap() {
	d.Ptr = nil
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
	atomic.AddInt32(&d.MapCount, -1)
}
