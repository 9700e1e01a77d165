package vkg

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestIndexSliceBytes(t *testing.T) {
	tests := []struct {
		name      string
		src       IndexSourcer
		size      int
		indexType vk.IndexType
	}{
		{"uint16", IndexSliceUint16{0, 1, 2}, 6, vk.IndexTypeUint16},
		{"uint32", IndexSliceUint32{0, 1, 2}, 12, vk.IndexTypeUint32},
		{"empty", IndexSliceUint16{}, 0, vk.IndexTypeUint16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.src.Bytes(), tt.size)
			assert.Equal(t, tt.indexType, tt.src.IndexType())
		})
	}
}

func TestIndexSliceUint32Values(t *testing.T) {
	b := IndexSliceUint32{7, 70000}.Bytes()
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(b[0:4]))
	assert.Equal(t, uint32(70000), binary.LittleEndian.Uint32(b[4:8]))
}

func TestInferBufferUsage(t *testing.T) {
	assert.Equal(t, vk.BufferUsageIndexBufferBit, inferBufferUsage(IndexSliceUint16{1}))
	assert.Equal(t, vk.BufferUsageFlagBits(0), inferBufferUsage(rawBytes{}))
}

type rawBytes []byte

func (r rawBytes) Bytes() []byte { return r }
