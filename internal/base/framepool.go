package base

import (
	"github.com/celer/vkexamples/vkg"
	vk "github.com/vulkan-go/vulkan"
)

// FramePool hands out secondary command buffers for one frame slot. Reset
// recycles every buffer at once, so it must only be called after the slot's
// fence has signaled. A FramePool is not safe for concurrent use, give each
// recording goroutine its own.
type FramePool struct {
	pool    *vkg.CommandPool
	buffers []*vkg.CommandBuffer
	used    int
}

func NewFramePool(device *vkg.Device, family *vkg.QueueFamily) (*FramePool, error) {
	pool, err := device.CreateCommandPool(family)
	if err != nil {
		return nil, err
	}
	return &FramePool{pool: pool}, nil
}

// Reset makes every buffer handed out since the last reset available again
func (f *FramePool) Reset() error {
	f.used = 0
	if len(f.buffers) == 0 {
		return nil
	}
	return f.pool.Reset()
}

// Next returns a secondary command buffer in the initial state
func (f *FramePool) Next() (*vkg.CommandBuffer, error) {
	if f.used == len(f.buffers) {
		cmd, err := f.pool.AllocateBuffer(vk.CommandBufferLevelSecondary)
		if err != nil {
			return nil, err
		}
		f.buffers = append(f.buffers, cmd)
	}
	cmd := f.buffers[f.used]
	f.used++
	return cmd, nil
}

// Allocated is the number of buffers the pool has created so far
func (f *FramePool) Allocated() int {
	return len(f.buffers)
}

func (f *FramePool) Destroy() {
	f.pool.Destroy()
	f.buffers = nil
}

// FramePools is one FramePool per frame slot
type FramePools []*FramePool

func NewFramePools(device *vkg.Device, family *vkg.QueueFamily, slots int) (FramePools, error) {
	pools := make(FramePools, 0, slots)
	for i := 0; i < slots; i++ {
		p, err := NewFramePool(device, family)
		if err != nil {
			pools.Destroy()
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, nil
}

func (f FramePools) Destroy() {
	for _, p := range f {
		p.Destroy()
	}
}
