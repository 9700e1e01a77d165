package vkg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, uint64(12), makeAlignUp(12, 3))
	assert.Equal(t, uint64(12), makeAlignUp(10, 3))
	assert.Equal(t, uint64(256), makeAlignUp(1, 256))
	assert.Equal(t, uint64(7), makeAlignUp(7, 1))
	assert.Equal(t, uint64(7), makeAlignUp(7, 0))
}

func TestAllocator(t *testing.T) {
	a := &LinearAllocator{Size: 1024}

	assert.Nil(t, a.Allocate(2048, 1), "larger than the block")

	fa := a.Allocate(512, 1)
	require.NotNil(t, fa)
	assert.Equal(t, uint64(0), fa.Offset)

	assert.Nil(t, a.Allocate(768, 1))

	k := a.Allocate(500, 1)
	require.NotNil(t, k)
	assert.Equal(t, uint64(512), k.Offset)

	assert.Nil(t, a.Allocate(50, 1))
	require.NotNil(t, a.Allocate(5, 1))
	assert.Nil(t, a.Allocate(20, 1))

	a.Free(k)
	ra := a.Allocate(500, 1)
	require.NotNil(t, ra, "freed range is reused")
	assert.Equal(t, uint64(512), ra.Offset)

	a.Free(fa)
	ra = a.Allocate(20, 1)
	require.NotNil(t, ra)
	assert.Equal(t, uint64(0), ra.Offset, "head of the block is reused first")

	ra = a.Allocate(40, 1)
	require.NotNil(t, ra)
	assert.Equal(t, uint64(20), ra.Offset)

	ra = a.Allocate(12, 1)
	require.NotNil(t, ra)
	assert.Equal(t, uint64(60), ra.Offset)

	assert.Nil(t, a.Allocate(500, 1))

	ra = a.Allocate(5, 1)
	require.NotNil(t, ra)
	assert.Equal(t, uint64(72), ra.Offset)
}

func TestAllocatorAlignment(t *testing.T) {
	a := &LinearAllocator{Size: 1024}

	first := a.Allocate(10, 256)
	require.NotNil(t, first)
	assert.Equal(t, uint64(0), first.Offset)

	second := a.Allocate(10, 256)
	require.NotNil(t, second)
	assert.Equal(t, uint64(256), second.Offset)

	// the tail only has room at 512 and 768
	third := a.Allocate(300, 256)
	require.NotNil(t, third)
	assert.Equal(t, uint64(512), third.Offset)

	assert.Nil(t, a.Allocate(200, 256), "aligned start of the tail leaves no room")
}

func TestAllocatorSmallGapDoesNotUnderflow(t *testing.T) {
	a := &LinearAllocator{Size: 100}

	require.NotNil(t, a.Allocate(10, 1))
	next := a.Allocate(10, 1)
	require.NotNil(t, next)
	require.NotNil(t, a.Allocate(10, 1))
	a.Free(next)

	// the gap [10,20) aligned to 32 starts past its own end, so the tail is used
	ra := a.Allocate(4, 32)
	require.NotNil(t, ra)
	assert.Equal(t, uint64(32), ra.Offset)
}

type destroyCounter struct{ count *int }

func (d destroyCounter) Destroy() { *d.count++ }

func TestAllocatorDestroyContents(t *testing.T) {
	a := &LinearAllocator{Size: 64}
	destroyed := 0
	for i := 0; i < 4; i++ {
		al := a.Allocate(8, 1)
		require.NotNil(t, al)
		al.Object = destroyCounter{&destroyed}
	}
	a.DestroyContents()
	assert.Equal(t, 4, destroyed)
	assert.Empty(t, a.Allocations())
	assert.Equal(t, uint64(0), a.Used())
}

func TestAllocatorNeverOverlaps(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	a := &LinearAllocator{Size: 1 << 16}
	live := []*Allocation{}

	for i := 0; i < 2000; i++ {
		if len(live) > 0 && r.Intn(3) == 0 {
			j := r.Intn(len(live))
			a.Free(live[j])
			live = append(live[:j], live[j+1:]...)
			continue
		}
		align := uint64(1) << uint(r.Intn(9))
		al := a.Allocate(uint64(r.Intn(2048)+1), align)
		if al == nil {
			continue
		}
		assert.Zero(t, al.Offset%align)
		live = append(live, al)
	}

	allocs := a.Allocations()
	require.Len(t, allocs, len(live))
	for i, al := range allocs {
		assert.LessOrEqual(t, al.End(), a.Size)
		if i > 0 {
			assert.LessOrEqual(t, allocs[i-1].End(), al.Offset, "allocations %s and %s overlap", allocs[i-1], al)
		}
	}
}
