package vkg

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

type Queue struct {
	Device      *Device
	QueueFamily *QueueFamily
	VKQueue     vk.Queue
}

func (q *Queue) WaitIdle() error {
	return vk.Error(vk.QueueWaitIdle(q.VKQueue))
}

func submitInfo(buffers []*CommandBuffer) vk.SubmitInfo {
	b := make([]vk.CommandBuffer, len(buffers))
	for i := range buffers {
		b[i] = buffers[i].VKCommandBuffer
	}
	return vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(b)),
		PCommandBuffers:    b,
	}
}

// SubmitWaitIdle submits the buffers and then waits for the whole queue to drain
func (q *Queue) SubmitWaitIdle(buffers ...*CommandBuffer) error {
	err := vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo(buffers)}, vk.NullFence))
	if err != nil {
		return errors.Wrap(err, "submitting to queue")
	}
	return q.WaitIdle()
}

// SubmitAndWait submits the buffers with a private fence and waits for that
// fence, leaving other work on the queue untouched
func (q *Queue) SubmitAndWait(timeout time.Duration, buffers ...*CommandBuffer) error {
	fence, err := q.Device.CreateFence()
	if err != nil {
		return err
	}
	defer fence.Destroy()

	err = q.SubmitWithFence(fence, buffers...)
	if err != nil {
		return err
	}
	return fence.Wait(timeout)
}

// SubmitWithFence submits the buffers, the fence is signaled once they have completed
func (q *Queue) SubmitWithFence(fence *Fence, buffers ...*CommandBuffer) error {
	err := vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{submitInfo(buffers)}, fence.VKFence))
	if err != nil {
		return errors.Wrap(err, "submitting to queue")
	}
	return nil
}

// SubmitFrame submits a frame's command buffers, waiting at the color output
// stage on wait and signaling signal and fence when done
func (q *Queue) SubmitFrame(wait, signal vk.Semaphore, fence vk.Fence, buffers ...vk.CommandBuffer) error {
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal},
	}
	err := vk.Error(vk.QueueSubmit(q.VKQueue, 1, []vk.SubmitInfo{info}, fence))
	if err != nil {
		return errors.Wrap(err, "submitting frame")
	}
	return nil
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Device: %s QueueFamily: %s}", q.Device.String(), q.QueueFamily.String())
}
