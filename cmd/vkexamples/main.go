package main

import (
	"os"
	"runtime"

	"github.com/celer/vkexamples/cmd/vkexamples/commands"
)

func init() {
	// glfw must be driven from the main thread
	runtime.LockOSThread()
}

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
