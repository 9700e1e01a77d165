package vkg

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))
}

func TestSafeStringsDoesNotModifyInput(t *testing.T) {
	in := []string{"VK_KHR_surface", "VK_EXT_debug_report\x00"}
	out := safeStrings(in)
	assert.Equal(t, []string{"VK_KHR_surface\x00", "VK_EXT_debug_report\x00"}, out)
	assert.Equal(t, "VK_KHR_surface", in[0])
}

func TestToBytes(t *testing.T) {
	v := [2]uint32{1, 2}
	b := ToBytes(unsafe.Pointer(&v[0]), 8)
	assert.Len(t, b, 8)
	assert.Nil(t, ToBytes(nil, 8))
}
