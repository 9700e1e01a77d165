package vkg

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

// NoTimeout waits on a fence for as long as it takes
const NoTimeout = time.Duration(math.MaxInt64)

type Fence struct {
	Device  *Device
	VKFence vk.Fence
}

func (d *Device) VKDestroyFence(f vk.Fence) {
	vk.DestroyFence(d.VKDevice, f, nil)
}

// VKCreateFence creates a native fence, optionally in the signaled state so
// that the first wait on it returns immediately
func (d *Device) VKCreateFence(signaled bool) (vk.Fence, error) {
	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	err := vk.Error(vk.CreateFence(d.VKDevice, &createInfo, nil, &fence))
	if err != nil {
		return vk.NullFence, errors.Wrap(err, "creating fence")
	}
	return fence, nil
}

func (d *Device) CreateFence() (*Fence, error) {
	fence, err := d.VKCreateFence(false)
	if err != nil {
		return nil, err
	}
	return &Fence{VKFence: fence, Device: d}, nil
}

// WaitForFences blocks until one or all of the fences are signaled, or ts elapses
func (d *Device) WaitForFences(waitForAll bool, ts time.Duration, fences ...*Fence) error {
	f := make([]vk.Fence, len(fences))
	for i := range fences {
		f[i] = fences[i].VKFence
	}
	return d.VKWaitForFences(waitForAll, ts, f...)
}

func (d *Device) VKWaitForFences(waitForAll bool, ts time.Duration, fences ...vk.Fence) error {
	wait := vk.Bool32(vk.False)
	if waitForAll {
		wait = vk.True
	}
	res := vk.WaitForFences(d.VKDevice, uint32(len(fences)), fences, wait, uint64(ts.Nanoseconds()))
	if res == vk.Timeout {
		return errors.Newf("timed out after %s waiting for %d fences", ts, len(fences))
	}
	return vk.Error(res)
}

func (d *Device) VKResetFences(fences ...vk.Fence) error {
	return vk.Error(vk.ResetFences(d.VKDevice, uint32(len(fences)), fences))
}

func (f *Fence) Wait(ts time.Duration) error {
	return f.Device.VKWaitForFences(true, ts, f.VKFence)
}

func (f *Fence) Reset() error {
	return f.Device.VKResetFences(f.VKFence)
}

func (f *Fence) Destroy() {
	if f.VKFence != vk.NullFence {
		vk.DestroyFence(f.Device.VKDevice, f.VKFence, nil)
		f.VKFence = vk.NullFence
	}
}
