package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool owns the memory backing the command buffers allocated from it.
// A pool, and every buffer it hands out, must only be used by one goroutine at a time.
type CommandPool struct {
	Device        *Device
	QueueFamily   *QueueFamily
	VKCommandPool vk.CommandPool
}

func (c *CommandPool) Destroy() {
	if c.VKCommandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(c.Device.VKDevice, c.VKCommandPool, nil)
		c.VKCommandPool = vk.NullCommandPool
	}
}

// Reset returns every buffer allocated from this pool to the initial state
func (c *CommandPool) Reset() error {
	return vk.Error(vk.ResetCommandPool(c.Device.VKDevice, c.VKCommandPool, 0))
}

// AllocateBuffers allocates count command buffers of the given level
func (c *CommandPool) AllocateBuffers(count int, level vk.CommandBufferLevel) ([]*CommandBuffer, error) {
	if count <= 0 {
		return nil, nil
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              level,
		CommandBufferCount: uint32(count),
	}

	cmdBuffers := make([]vk.CommandBuffer, count)
	err := vk.Error(vk.AllocateCommandBuffers(c.Device.VKDevice, &allocateInfo, cmdBuffers))
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d command buffers", count)
	}

	ret := make([]*CommandBuffer, count)
	for i := range ret {
		ret[i] = &CommandBuffer{VKCommandBuffer: cmdBuffers[i], Level: level}
	}
	return ret, nil
}

// AllocateBuffer allocates a single command buffer of the given level
func (c *CommandPool) AllocateBuffer(level vk.CommandBufferLevel) (*CommandBuffer, error) {
	ret, err := c.AllocateBuffers(1, level)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}

func (c *CommandPool) FreeBuffer(b *CommandBuffer) {
	vk.FreeCommandBuffers(c.Device.VKDevice, c.VKCommandPool, 1, []vk.CommandBuffer{b.VKCommandBuffer})
}

// CreateCommandPool creates a pool whose buffers can be individually reset
func (d *Device) CreateCommandPool(q *QueueFamily) (*CommandPool, error) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: uint32(q.Index),
	}

	var commandPool vk.CommandPool
	err := vk.Error(vk.CreateCommandPool(d.VKDevice, &createInfo, nil, &commandPool))
	if err != nil {
		return nil, errors.Wrapf(err, "creating command pool for queue family %d", q.Index)
	}

	return &CommandPool{
		Device:        d,
		QueueFamily:   q,
		VKCommandPool: commandPool,
	}, nil
}
