package all

import (
	"testing"

	"github.com/celer/vkexamples/internal/examples"
	"github.com/stretchr/testify/assert"
)

func TestEveryExampleRegistered(t *testing.T) {
	assert.Equal(t, []string{
		"computeshader",
		"descriptorsets",
		"deviceinfo",
		"multithreading",
		"pipelines",
		"texture",
		"triangle",
	}, examples.Names())

	for _, e := range examples.All() {
		assert.NotEmpty(t, e.Description(), e.Name())
	}
}
