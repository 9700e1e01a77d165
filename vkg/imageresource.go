package vkg

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ImageResource is an image sub-allocated from an ImageResourcePool
type ImageResource struct {
	Image
	ResourcePool    *ImageResourcePool
	Allocation      *Allocation
	StagingResource *BufferResource
}

// RequiresStaging indicates that this particular image resource
// must be staged before it can be used
func (r *ImageResource) RequiresStaging() bool {
	return r.ResourcePool.NeedsStaging
}

// AllocateStagingResource will allocate a buffer from the staging pool large
// enough to hold the image contents. Once allocated it must be explicitly free'd.
func (r *ImageResource) AllocateStagingResource() error {
	if !r.ResourcePool.NeedsStaging {
		return errors.New("resource does not require staging")
	}
	stagingPool := r.ResourcePool.ResourceManager.GetStagingPool()
	if stagingPool == nil {
		return ErrNoStagingPool
	}
	var err error
	r.StagingResource, err = stagingPool.AllocateBuffer(r.Image.Size, vk.BufferUsageTransferSrcBit)
	return err
}

// FreeStagingResource will free the staged resource associated with this resource
func (r *ImageResource) FreeStagingResource() {
	if r.StagingResource != nil {
		r.StagingResource.Free()
		r.StagingResource = nil
	}
}

func (r *ImageResource) String() string {
	return r.Image.String()
}

func (r *ImageResource) Destroy() {
	r.Free()
}

// Free this resource and it's associated resources
func (r *ImageResource) Free() {
	r.FreeStagingResource()
	if r.Allocation != nil {
		if r.ResourcePool.Allocator != nil {
			r.ResourcePool.Allocator.Free(r.Allocation)
		}
		r.Allocation = nil
	}
	r.Image.Destroy()
}

// StageImageResource records a copy of the staging buffer into the image,
// which must be in the TRANSFER_DST layout
func (cb *CommandBuffer) StageImageResource(img *ImageResource) error {
	if img.StagingResource == nil {
		return errors.New("no staging resource has been allocated")
	}
	vk.CmdCopyBufferToImage(cb.VK(), img.StagingResource.VKBuffer, img.VKImage, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{
			Width:  img.Extent.Width,
			Height: img.Extent.Height,
			Depth:  1,
		},
	}})
	return nil
}

type layoutTransition struct {
	srcAccess, dstAccess vk.AccessFlagBits
	srcStage, dstStage   vk.PipelineStageFlagBits
}

// transitionFor returns the access masks and stages for the layout changes this package performs
func transitionFor(oldLayout, newLayout vk.ImageLayout) (layoutTransition, bool) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return layoutTransition{
			dstAccess: vk.AccessTransferWriteBit,
			srcStage:  vk.PipelineStageTopOfPipeBit,
			dstStage:  vk.PipelineStageTransferBit,
		}, true
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return layoutTransition{
			srcAccess: vk.AccessTransferWriteBit,
			dstAccess: vk.AccessShaderReadBit,
			srcStage:  vk.PipelineStageTransferBit,
			dstStage:  vk.PipelineStageFragmentShaderBit,
		}, true
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return layoutTransition{
			dstAccess: vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit,
			srcStage:  vk.PipelineStageTopOfPipeBit,
			dstStage:  vk.PipelineStageEarlyFragmentTestsBit,
		}, true
	}
	return layoutTransition{}, false
}

// TransitionImageLayout records a barrier moving img from oldLayout to newLayout
func (cb *CommandBuffer) TransitionImageLayout(img *Image, oldLayout, newLayout vk.ImageLayout) error {
	t, ok := transitionFor(oldLayout, newLayout)
	if !ok {
		return errors.Newf("unsupported layout transition %d -> %d", oldLayout, newLayout)
	}

	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.VKImage,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectForFormat(img.VKFormat),
			LevelCount: 1,
			LayerCount: 1,
		},
		SrcAccessMask: vk.AccessFlags(t.srcAccess),
		DstAccessMask: vk.AccessFlags(t.dstAccess),
	}

	vk.CmdPipelineBarrier(cb.VK(), vk.PipelineStageFlags(t.srcStage), vk.PipelineStageFlags(t.dstStage),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	return nil
}
