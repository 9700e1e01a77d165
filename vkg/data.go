package vkg

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

type index interface {
	~uint16 | ~uint32
}

// indexBytes views the backing array of s without copying
func indexBytes[T index](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return ToBytes(unsafe.Pointer(&s[0]), len(s)*int(unsafe.Sizeof(zero)))
}

// IndexSliceUint16 is an index buffer source with 16 bit indices
type IndexSliceUint16 []uint16

func (i IndexSliceUint16) Bytes() []byte           { return indexBytes(i) }
func (i IndexSliceUint16) IndexType() vk.IndexType { return vk.IndexTypeUint16 }

// IndexSliceUint32 is an index buffer source with 32 bit indices, needed once
// a mesh has more than 65535 vertices
type IndexSliceUint32 []uint32

func (i IndexSliceUint32) Bytes() []byte           { return indexBytes(i) }
func (i IndexSliceUint32) IndexType() vk.IndexType { return vk.IndexTypeUint32 }
