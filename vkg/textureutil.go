package vkg

import (
	"image"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// StageTextureFromImage allocates a sampled RGBA image from the pool and
// uploads srcImg into it through the staging pool. cmd is recorded as a one
// time command buffer and the call blocks until queue has finished the copy.
// The returned image is in the SHADER_READ_ONLY layout.
func (p *ImageResourcePool) StageTextureFromImage(srcImg *image.RGBA, cmd *CommandBuffer, queue *Queue) (*ImageResource, error) {
	b := srcImg.Bounds()
	if b.Empty() {
		return nil, errors.New("cannot stage an empty image")
	}
	extent := vk.Extent2D{Width: uint32(b.Dx()), Height: uint32(b.Dy())}

	img, err := p.AllocateImage(extent, vk.FormatR8g8b8a8Unorm, vk.ImageTilingOptimal, vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit)
	if err != nil {
		return nil, err
	}

	err = p.uploadImage(img, srcImg, cmd, queue)
	if err != nil {
		img.Free()
		return nil, err
	}
	return img, nil
}

func (p *ImageResourcePool) uploadImage(img *ImageResource, srcImg *image.RGBA, cmd *CommandBuffer, queue *Queue) error {
	err := img.AllocateStagingResource()
	if err != nil {
		return err
	}
	defer img.FreeStagingResource()

	err = img.StagingResource.ResourcePool.Map()
	if err != nil {
		return err
	}
	srb := img.StagingResource.Bytes()
	if srb == nil {
		return errors.New("unable to map bytes for image data, make sure staging buffer has been mapped")
	}
	copy(srb, tightPixels(srcImg))

	err = cmd.BeginOneTime()
	if err != nil {
		return err
	}
	err = cmd.TransitionImageLayout(&img.Image, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if err != nil {
		return err
	}
	err = cmd.StageImageResource(img)
	if err != nil {
		return err
	}
	err = cmd.TransitionImageLayout(&img.Image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	if err != nil {
		return err
	}
	err = cmd.End()
	if err != nil {
		return err
	}

	return queue.SubmitAndWait(10*time.Second, cmd)
}

// tightPixels returns the pixels of img with no padding between rows
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && len(img.Pix) == rowLen*b.Dy() {
		return img.Pix
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[start:start+rowLen]...)
	}
	return out
}
