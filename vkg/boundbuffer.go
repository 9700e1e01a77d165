package vkg

import (
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

const hostMemory = vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit

// HostBoundBuffer is a buffer with its own block of host visible memory,
// it is the simplest way to get data to the GPU
type HostBoundBuffer struct {
	HostBuffer       *Buffer
	HostMemory       *DeviceMemory
	HostMemoryOffset uint64
	BufferObject     ByteSourcer
}

// StagedBoundBuffer is a buffer living in device local memory together with
// the host visible buffer used to upload into it
type StagedBoundBuffer struct {
	HostBoundBuffer

	DeviceBuffer       *Buffer
	DeviceMemory       *DeviceMemory
	DeviceMemoryOffset uint64
}

// CreateHostBoundBuffer creates a host visible buffer sized for bo, its usage
// is inferred from the interfaces bo implements
func (d *Device) CreateHostBoundBuffer(bo ByteSourcer) (*HostBoundBuffer, error) {
	usage := inferBufferUsage(bo)
	if usage == 0 {
		return nil, errors.Newf("unable to infer buffer usage for %T", bo)
	}
	return d.createHostBoundBuffer(bo, usage, vk.SharingModeExclusive)
}

func (d *Device) createHostBoundBuffer(bo ByteSourcer, usage vk.BufferUsageFlagBits, sharingMode vk.SharingMode) (*HostBoundBuffer, error) {
	buffer, memory, err := d.CreateAndBindBufferAndMemory(uint64(len(bo.Bytes())), 0, usage, hostMemory, sharingMode)
	if err != nil {
		return nil, err
	}
	log.Debugf("BoundBuffer: %s", buffer)

	return &HostBoundBuffer{
		HostBuffer:   buffer,
		HostMemory:   memory,
		BufferObject: bo,
	}, nil
}

func (d *Device) CreateAndBindBufferAndMemory(size uint64, offset uint64, usage vk.BufferUsageFlagBits, mprops vk.MemoryPropertyFlagBits, sharing vk.SharingMode) (*Buffer, *DeviceMemory, error) {
	buffer, err := d.CreateBufferWithOptions(size, usage, sharing)
	if err != nil {
		return nil, nil, err
	}
	memory, err := d.AllocateForBuffer(buffer, mprops)
	if err != nil {
		buffer.Destroy()
		return nil, nil, err
	}
	err = buffer.Bind(memory, offset)
	if err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, nil, errors.Wrap(err, "binding buffer memory")
	}
	return buffer, memory, nil
}

// CreateStagedBoundBuffer creates a device local buffer for bo and a host
// visible buffer to stage it through. Call Upload to populate the device buffer.
func (d *Device) CreateStagedBoundBuffer(bo ByteSourcer) (*StagedBoundBuffer, error) {
	s := &StagedBoundBuffer{}
	s.BufferObject = bo

	size := uint64(len(bo.Bytes()))

	buffer, memory, err := d.CreateAndBindBufferAndMemory(size, 0, vk.BufferUsageTransferSrcBit, hostMemory, vk.SharingModeExclusive)
	if err != nil {
		return nil, err
	}
	s.HostBuffer = buffer
	s.HostMemory = memory

	usage := vk.BufferUsageTransferDstBit | inferBufferUsage(bo)

	buffer, memory, err = d.CreateAndBindBufferAndMemory(size, 0, usage, vk.MemoryPropertyDeviceLocalBit, vk.SharingModeExclusive)
	if err != nil {
		s.Destroy()
		return nil, err
	}
	s.DeviceBuffer = buffer
	s.DeviceMemory = memory

	return s, nil
}

// VKBuffer returns the device local buffer for binding
func (s *StagedBoundBuffer) VKBuffer() vk.Buffer {
	return s.DeviceBuffer.VKBuffer
}

// Upload copies the buffer object into the staging buffer and then into device
// memory, blocking until the copy has completed
func (s *StagedBoundBuffer) Upload(pool *CommandPool, queue *Queue) error {
	if s.HostBuffer == nil {
		return errors.New("staging buffer has already been released")
	}
	err := s.Map()
	if err != nil {
		return err
	}

	cmd, err := pool.AllocateBuffer(vk.CommandBufferLevelPrimary)
	if err != nil {
		return err
	}
	defer pool.FreeBuffer(cmd)

	err = cmd.BeginOneTime()
	if err != nil {
		return err
	}
	cmd.CopyBuffer(s)
	err = cmd.End()
	if err != nil {
		return err
	}

	return queue.SubmitAndWait(10*time.Second, cmd)
}

// FreeStaging releases the host side of the buffer once it has been uploaded
func (s *StagedBoundBuffer) FreeStaging() {
	s.HostBoundBuffer.Destroy()
	s.HostBuffer = nil
	s.HostMemory = nil
}

func (s *StagedBoundBuffer) Destroy() {
	s.HostBoundBuffer.Destroy()
	if s.DeviceBuffer != nil {
		s.DeviceBuffer.Destroy()
		s.DeviceBuffer = nil
	}
	if s.DeviceMemory != nil {
		s.DeviceMemory.Destroy()
		s.DeviceMemory = nil
	}
}

// CopyBuffer records a copy of the whole staging buffer into the device buffer
func (cb *CommandBuffer) CopyBuffer(s *StagedBoundBuffer) {
	vk.CmdCopyBuffer(cb.VK(), s.HostBuffer.VKBuffer, s.DeviceBuffer.VKBuffer, 1, []vk.BufferCopy{{
		SrcOffset: 0,
		DstOffset: vk.DeviceSize(s.DeviceMemoryOffset),
		Size:      vk.DeviceSize(s.HostBuffer.Size),
	}})
}

// Map copies the current contents of the buffer object into host memory
func (h *HostBoundBuffer) Map() error {
	return h.HostMemory.MapCopyUnmapAt(h.BufferObject.Bytes(), h.HostMemoryOffset)
}

func (h *HostBoundBuffer) VKBuffer() vk.Buffer {
	return h.HostBuffer.VKBuffer
}

func (h *HostBoundBuffer) Destroy() {
	if h.HostBuffer != nil {
		h.HostBuffer.Destroy()
	}
	if h.HostMemory != nil {
		h.HostMemory.Destroy()
	}
}
