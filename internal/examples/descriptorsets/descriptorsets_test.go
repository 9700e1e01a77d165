package descriptorsets

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	lin "github.com/xlab/linmath"
)

func TestDescriptorCount(t *testing.T) {
	assert.Equal(t, 4, descriptorCount(2, 2))
	assert.Equal(t, 8, descriptorCount(len(objects), 4))
	assert.Equal(t, 0, descriptorCount(0, 3))
}

func TestModelTranslates(t *testing.T) {
	m := model(lin.Vec3{-0.9, 0.5, 0.25}, 0)
	assert.InDelta(t, -0.9, m[3][0], 1e-6)
	assert.InDelta(t, 0.5, m[3][1], 1e-6)
	assert.InDelta(t, 0.25, m[3][2], 1e-6)
	assert.InDelta(t, 1, m[0][0], 1e-6)
}

func TestModelSpinKeepsOffset(t *testing.T) {
	m := model(lin.Vec3{2, 0, 0}, math.Pi/2)
	// spinning happens before translation so the cube stays in place
	assert.InDelta(t, 2, m[3][0], 1e-6)
	assert.InDelta(t, 0, m[0][0], 1e-6)
}

func TestObjectsAreDistinct(t *testing.T) {
	assert.Len(t, objects, 2)
	assert.NotEqual(t, objects[0].offset, objects[1].offset)
}
