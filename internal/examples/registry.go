// Package examples keeps the registry of runnable examples. Each example lives
// in its own subpackage and registers itself from init.
package examples

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/celer/vkexamples/internal/config"
)

// Example is a runnable demonstration of one Vulkan concept
type Example interface {
	Name() string
	Description() string
	Run(ctx context.Context, cfg *config.Config) error
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Example)
)

// Register makes e available by name, registering a name twice panics
func Register(e Example) {
	mu.Lock()
	defer mu.Unlock()

	name := e.Name()
	if name == "" {
		panic("examples: Register with empty name")
	}
	if _, dup := registry[name]; dup {
		panic("examples: Register called twice for " + name)
	}
	registry[name] = e
}

// Lookup finds an example by name
func Lookup(name string) (Example, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[name]
	return e, ok
}

// All returns every registered example sorted by name
func All() []Example {
	mu.RLock()
	defer mu.RUnlock()

	all := make([]Example, 0, len(registry))
	for _, e := range registry {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name() < all[j].Name()
	})
	return all
}

// Names returns the sorted names of every registered example
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name()
	}
	return names
}

// Func adapts a plain function to the Example interface
type Func struct {
	ExampleName        string
	ExampleDescription string
	RunFunc            func(ctx context.Context, cfg *config.Config) error
}

func (f Func) Name() string {
	return f.ExampleName
}

func (f Func) Description() string {
	return f.ExampleDescription
}

func (f Func) Run(ctx context.Context, cfg *config.Config) error {
	return f.RunFunc(ctx, cfg)
}

type outputKey struct{}

// WithOutput returns a context that directs example reports to w
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// Output is where an example run with ctx writes its report, stdout unless
// WithOutput says otherwise
func Output(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
