package vkg

import (
	vk "github.com/vulkan-go/vulkan"
)

// FrameLag is the default number of frames the CPU may record ahead of the GPU
var FrameLag = 2

// MaxFramesInFlight bounds the number of frame slots
const MaxFramesInFlight = 4

// ClampFramesInFlight limits n to 1..MaxFramesInFlight, 0 selects FrameLag
func ClampFramesInFlight(n int) int {
	if n == 0 {
		n = FrameLag
	}
	if n < 1 {
		return 1
	}
	if n > MaxFramesInFlight {
		return MaxFramesInFlight
	}
	return n
}

// FrameRing hands out frame slots round robin. Everything owned by a slot
// (command buffers, fences, semaphores, per frame uniform buffers) may only
// be reused once that slot's fence has signaled.
type FrameRing struct {
	n       int
	current int
}

func NewFrameRing(n int) *FrameRing {
	return &FrameRing{n: ClampFramesInFlight(n)}
}

// Current is the slot being recorded
func (f *FrameRing) Current() int {
	return f.current
}

// Advance moves to the next slot and returns it
func (f *FrameRing) Advance() int {
	f.current = (f.current + 1) % f.n
	return f.current
}

// Len is the number of slots in the ring
func (f *FrameRing) Len() int {
	return f.n
}

// FrameContext describes the frame being recorded
type FrameContext struct {
	// Slot is the frame ring slot, per frame resources should be indexed by it
	Slot int
	// ImageIndex is the swapchain image being rendered to
	ImageIndex  int
	RenderPass  vk.RenderPass
	Framebuffer vk.Framebuffer
	Extent      vk.Extent2D
}

// frameSync is the synchronization owned by one frame slot
type frameSync struct {
	cmd            *CommandBuffer
	inFlight       vk.Fence
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
}
