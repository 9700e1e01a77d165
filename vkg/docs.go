/*
Package vkg is a thin layer over the vulkan-go bindings used by the vkexamples programs. It does
not try to hide Vulkan, every wrapper keeps the native handle in a field prefixed with 'VK' so
callers can drop down to the raw API whenever a helper does not expose an option they need.

Native Vulkan terms
	Instance	the vulkan runtime instance
	PhysicalDevice	the physical hardware device
	Device		the logical device, the target of most vulkan calls
	Queue		where command buffers are submitted
	CommandPool	allocates command buffers for a single queue family
	DeviceMemory	memory on the host or device backing buffers and images
	Buffer		vertex, index, uniform or storage data
	Image		texel data, ImageView describes how a shader sees it
	DescriptorSet	binds buffers and images to shader binding points
	Pipeline	the compiled description of how the GPU processes data
	Swapchain	the presentable images of a surface

Drawing a frame

GraphicsApp owns the swapchain and everything derived from its size (image views, render pass,
depth image, framebuffers and graphics pipelines). Frames are recorded into a ring of
FramesInFlight slots. Each slot has a primary command buffer, a fence that signals when the GPU
is done with the slot, and a pair of semaphores ordering acquire, render and present:

	1. wait on the slot fence
	2. acquire a swapchain image, signaling imageAvailable
	3. reset the fence and record the slot command buffer with MakeCommandBuffer
	4. submit, waiting on imageAvailable and signaling renderFinished and the fence
	5. present, waiting on renderFinished
	6. advance to the next slot

An out of date or suboptimal swapchain, or a call to Resize, rebuilds the size dependent objects.
A zero sized framebuffer (a minimized window) postpones the rebuild until the window has a size.

Memory

ResourceManager hands out named pools of device memory. BufferResourcePool and ImageResourcePool
carve buffers and images out of a pool with a LinearAllocator. Pools backed by memory the host
cannot see stage their uploads through the shared staging pool.
*/
package vkg
