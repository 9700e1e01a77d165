package triangle

import (
	"testing"

	"github.com/celer/vkexamples/internal/examples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	e, ok := examples.Lookup("triangle")
	require.True(t, ok)
	assert.Equal(t, Example{}.Description(), e.Description())
}
