package vkg

import (
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// StageBuffer allocates a buffer for src from the pool and fills it. Host
// visible pools are written directly, otherwise the bytes are copied through
// the staging pool using cmd and the call blocks until queue has finished.
func (p *BufferResourcePool) StageBuffer(src ByteSourcer, usage vk.BufferUsageFlagBits, cmd *CommandBuffer, queue *Queue) (*BufferResource, error) {
	data := src.Bytes()
	if len(data) == 0 {
		return nil, errors.New("cannot stage an empty buffer")
	}
	if usage == 0 {
		usage = inferBufferUsage(src)
	}

	res, err := p.AllocateBuffer(uint64(len(data)), usage)
	if err != nil {
		return nil, err
	}

	if !res.RequiresStaging() {
		err = p.Map()
		if err == nil {
			copy(res.Bytes(), data)
			err = res.Flush()
		}
		if err != nil {
			res.Free()
			return nil, err
		}
		return res, nil
	}

	err = res.upload(data, cmd, queue)
	if err != nil {
		res.Free()
		return nil, err
	}
	return res, nil
}

func (r *BufferResource) upload(data []byte, cmd *CommandBuffer, queue *Queue) error {
	err := r.AllocateStagingResource()
	if err != nil {
		return err
	}
	defer r.FreeStagingResource()

	err = r.StagingResource.ResourcePool.Map()
	if err != nil {
		return err
	}
	copy(r.StagingResource.Bytes(), data)

	err = cmd.BeginOneTime()
	if err != nil {
		return err
	}
	cmd.CmdCopyBufferFromStagedResource(r)
	err = cmd.End()
	if err != nil {
		return err
	}
	return queue.SubmitAndWait(10*time.Second, cmd)
}
