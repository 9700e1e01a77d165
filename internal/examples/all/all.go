// Package all registers every example, import it for its side effects.
package all

import (
	_ "github.com/celer/vkexamples/internal/examples/computeshader"
	_ "github.com/celer/vkexamples/internal/examples/descriptorsets"
	_ "github.com/celer/vkexamples/internal/examples/deviceinfo"
	_ "github.com/celer/vkexamples/internal/examples/multithreading"
	_ "github.com/celer/vkexamples/internal/examples/pipelines"
	_ "github.com/celer/vkexamples/internal/examples/texture"
	_ "github.com/celer/vkexamples/internal/examples/triangle"
)
