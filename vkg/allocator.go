package vkg

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Allocation is a range of a resource pool handed out by an IAllocator. Object
// is the resource bound to the range, if any, and is destroyed along with the
// allocator's contents.
type Allocation struct {
	Offset uint64
	Size   uint64
	Object interface{}
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d %d]", a.Offset, a.Size)
}

// End returns the first byte past this allocation
func (a *Allocation) End() uint64 {
	return a.Offset + a.Size
}

// IAllocator hands out ranges of a fixed size block of memory
type IAllocator interface {
	Allocate(size uint64, align uint64) *Allocation
	Free(a *Allocation)
	Allocations() []*Allocation
	DestroyContents()
	LogDetails()
}

// LinearAllocator is a first fit allocator. Allocations are kept sorted by
// offset and a new allocation is placed at the head of the block, in the first
// gap large enough to hold it, or after the last allocation, in that order.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func makeAlignUp(a uint64, align uint64) uint64 {
	if align <= 1 {
		return a
	}
	m := a % align
	if m == 0 {
		return a
	}
	return (a - m) + align
}

func (p *LinearAllocator) insert(i int, na *Allocation) *Allocation {
	p.allocs = append(p.allocs, nil)
	copy(p.allocs[i+1:], p.allocs[i:])
	p.allocs[i] = na
	return na
}

// Allocate returns an allocation of size bytes whose offset is a multiple of
// align, or nil if the block has no room for it
func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 || size > p.Size {
		return nil
	}

	if len(p.allocs) == 0 || p.allocs[0].Offset >= size {
		return p.insert(0, &Allocation{Offset: 0, Size: size})
	}

	for i := 0; i+1 < len(p.allocs); i++ {
		start := makeAlignUp(p.allocs[i].End(), align)
		next := p.allocs[i+1].Offset
		if start <= next && next-start >= size {
			return p.insert(i+1, &Allocation{Offset: start, Size: size})
		}
	}

	start := makeAlignUp(p.allocs[len(p.allocs)-1].End(), align)
	if start <= p.Size && p.Size-start >= size {
		na := &Allocation{Offset: start, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}
	return nil
}

// Free returns the allocation's range to the block
func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

// Allocations returns a copy of the current allocations ordered by offset
func (p *LinearAllocator) Allocations() []*Allocation {
	ret := make([]*Allocation, len(p.allocs))
	copy(ret, p.allocs)
	sort.Slice(ret, func(i, j int) bool { return ret[i].Offset < ret[j].Offset })
	return ret
}

// Used returns the number of bytes currently allocated
func (p *LinearAllocator) Used() uint64 {
	var used uint64
	for _, a := range p.allocs {
		used += a.Size
	}
	return used
}

// DestroyContents destroys every object bound to an allocation and empties the block
func (p *LinearAllocator) DestroyContents() {
	for _, a := range p.Allocations() {
		if d, ok := a.Object.(IDestructable); ok {
			d.Destroy()
		}
	}
	p.allocs = nil
}

func (p *LinearAllocator) LogDetails() {
	log.WithFields(logrus.Fields{
		"size":        p.Size,
		"used":        p.Used(),
		"allocations": len(p.allocs),
	}).Debug("linear allocator")
	for _, a := range p.allocs {
		log.Debugf("\t%s %T", a, a.Object)
	}
}

func (p *LinearAllocator) String() string {
	return fmt.Sprintf("%v", p.allocs)
}
