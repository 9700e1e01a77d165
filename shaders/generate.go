// Package shaders holds the GLSL sources of the examples. The SPIR-V they
// load at runtime is built with glslangValidator:
//
//	go generate ./shaders
package shaders

//go:generate glslangValidator -V color.vert -o color.vert.spv
//go:generate glslangValidator -V color.frag -o color.frag.spv
//go:generate glslangValidator -V lit.vert -o lit.vert.spv
//go:generate glslangValidator -V phong.frag -o phong.frag.spv
//go:generate glslangValidator -V toon.frag -o toon.frag.spv
//go:generate glslangValidator -V texture.vert -o texture.vert.spv
//go:generate glslangValidator -V texture.frag -o texture.frag.spv
//go:generate glslangValidator -V instanced.vert -o instanced.vert.spv
//go:generate glslangValidator -V instanced.frag -o instanced.frag.spv
//go:generate glslangValidator -V overlay.vert -o overlay.vert.spv
//go:generate glslangValidator -V overlay.frag -o overlay.frag.spv
//go:generate glslangValidator -V mandelbrot.comp -o mandelbrot.comp.spv
