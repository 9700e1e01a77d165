package vkg

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func memType(props vk.MemoryPropertyFlagBits) vk.MemoryType {
	return vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(props)}
}

func TestSelectMemoryType(t *testing.T) {
	types := []vk.MemoryType{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}

	i, err := selectMemoryType(types, 0b111, vk.MemoryPropertyDeviceLocalBit)
	require.NoError(t, err)
	assert.EqualValues(t, 0, i)

	i, err = selectMemoryType(types, 0b111, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, i)

	// the first host visible type is masked out
	i, err = selectMemoryType(types, 0b100, vk.MemoryPropertyHostVisibleBit)
	require.NoError(t, err)
	assert.EqualValues(t, 2, i)

	_, err = selectMemoryType(types, 0b011, vk.MemoryPropertyHostCoherentBit)
	assert.True(t, errors.Is(err, ErrNoSuitableMemoryType))
}

func TestSelectPhysicalDevice(t *testing.T) {
	a := &PhysicalDevice{Index: 0, DeviceName: "a"}
	b := &PhysicalDevice{Index: 1, DeviceName: "b"}
	devices := []*PhysicalDevice{a, b}
	onlyB := func(p *PhysicalDevice) bool { return p == b }

	d, err := SelectPhysicalDevice(devices, -1, nil)
	require.NoError(t, err)
	assert.Equal(t, a, d)

	d, err = SelectPhysicalDevice(devices, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, b, d)

	d, err = SelectPhysicalDevice(devices, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, a, d)

	d, err = SelectPhysicalDevice(devices, 0, onlyB)
	require.NoError(t, err)
	assert.Equal(t, b, d)

	_, err = SelectPhysicalDevice(nil, -1, nil)
	assert.True(t, errors.Is(err, ErrNoDevice))
}

func TestMemoryTypeSliceCounts(t *testing.T) {
	m := MemoryTypeSlice{
		memType(vk.MemoryPropertyDeviceLocalBit),
		memType(vk.MemoryPropertyHostVisibleBit),
		memType(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	}
	assert.Equal(t, 2, m.NumHostVisible())
	assert.Equal(t, 1, m.NumHostCoherent())
	assert.Equal(t, 1, m.NumHostVisibleAndCoherent())
	assert.Equal(t, 1, m.NumDeviceLocal())
}
