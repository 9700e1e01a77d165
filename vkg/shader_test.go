package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpirvWords(t *testing.T) {
	words, err := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []uint32{spirvMagic, 0x00010000}, words)

	_, err = spirvWords([]byte{0x03, 0x02, 0x23})
	assert.Error(t, err)

	_, err = spirvWords(nil)
	assert.Error(t, err)

	_, err = spirvWords([]byte{1, 2, 3, 4})
	assert.Error(t, err)
}
