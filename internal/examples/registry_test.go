package examples

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/celer/vkexamples/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	mu.Lock()
	saved := registry
	registry = make(map[string]Example)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func named(name string) Func {
	return Func{
		ExampleName:        name,
		ExampleDescription: "about " + name,
		RunFunc: func(context.Context, *config.Config) error {
			return nil
		},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	reset(t)

	Register(named("triangle"))

	e, ok := Lookup("triangle")
	require.True(t, ok)
	assert.Equal(t, "triangle", e.Name())
	assert.Equal(t, "about triangle", e.Description())
	assert.NoError(t, e.Run(context.Background(), config.DefaultConfig()))

	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reset(t)

	Register(named("texture"))
	assert.Panics(t, func() {
		Register(named("texture"))
	})
	assert.Panics(t, func() {
		Register(named(""))
	})
}

func TestAllSorted(t *testing.T) {
	reset(t)

	for _, n := range []string{"texture", "computeshader", "triangle", "deviceinfo"} {
		Register(named(n))
	}

	assert.Equal(t, []string{"computeshader", "deviceinfo", "texture", "triangle"}, Names())
	assert.Len(t, All(), 4)
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output(context.Background()))

	var buf bytes.Buffer
	ctx := WithOutput(context.Background(), &buf)
	assert.Same(t, &buf, Output(ctx))
	assert.Equal(t, os.Stdout, Output(WithOutput(context.Background(), nil)))
}
