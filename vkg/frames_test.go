package vkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameRingSequence(t *testing.T) {
	r := NewFrameRing(3)
	assert.Equal(t, 3, r.Len())
	seq := []int{r.Current()}
	for i := 0; i < 6; i++ {
		seq = append(seq, r.Advance())
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, seq)
}

func TestFrameRingSingleSlot(t *testing.T) {
	r := NewFrameRing(1)
	assert.Equal(t, 0, r.Advance())
	assert.Equal(t, 0, r.Advance())
}

func TestClampFramesInFlight(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, FrameLag},
		{-3, 1},
		{1, 1},
		{2, 2},
		{4, 4},
		{9, MaxFramesInFlight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampFramesInFlight(tt.in), "in=%d", tt.in)
	}
}
