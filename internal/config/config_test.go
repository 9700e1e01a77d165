package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, "vkexamples", cfg.Window.Title)
	assert.False(t, cfg.Vulkan.Validation)
	assert.Equal(t, -1, cfg.Vulkan.DeviceIndex)
	assert.Equal(t, 2, cfg.Vulkan.FramesInFlight)
	assert.False(t, cfg.Vulkan.SyncFrames)
	assert.Equal(t, "shaders", cfg.Shaders.Dir)
	assert.Equal(t, 3200, cfg.Compute.Width)
	assert.Equal(t, 2400, cfg.Compute.Height)
	assert.Equal(t, 32, cfg.Compute.WorkgroupSize)
	assert.Equal(t, "mandelbrot.png", cfg.Compute.Output)
	assert.Equal(t, 0, cfg.Multithreading.Workers)
	assert.Equal(t, 256, cfg.Multithreading.Objects)
	assert.True(t, cfg.Multithreading.Overlay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.True(t, cfg.Logging.Console)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"negative height", func(c *Config) { c.Window.Height = -1 }, "window size"},
		{"device index", func(c *Config) { c.Vulkan.DeviceIndex = -2 }, "device_index"},
		{"no frames", func(c *Config) { c.Vulkan.FramesInFlight = 0 }, "frames_in_flight"},
		{"too many frames", func(c *Config) { c.Vulkan.FramesInFlight = 5 }, "frames_in_flight"},
		{"compute width", func(c *Config) { c.Compute.Width = 0 }, "compute size"},
		{"compute height", func(c *Config) { c.Compute.Height = 0 }, "compute size"},
		{"workgroup zero", func(c *Config) { c.Compute.WorkgroupSize = 0 }, "workgroup_size"},
		{"workgroup large", func(c *Config) { c.Compute.WorkgroupSize = MaxWorkgroupSize + 1 }, "workgroup_size"},
		{"no output", func(c *Config) { c.Compute.Output = "" }, "compute.output"},
		{"negative workers", func(c *Config) { c.Multithreading.Workers = -1 }, "workers"},
		{"no objects", func(c *Config) { c.Multithreading.Objects = 0 }, "objects"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Vulkan.FramesInFlight = 4
	cfg.Vulkan.DeviceIndex = 0
	cfg.Compute.WorkgroupSize = MaxWorkgroupSize
	cfg.Multithreading.Objects = 1
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
window:
  width: 640
  height: 480
vulkan:
  frames_in_flight: 3
  validation: true
compute:
  workgroup_size: 16
multithreading:
  workers: 4
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	assert.Equal(t, 3, cfg.Vulkan.FramesInFlight)
	assert.True(t, cfg.Vulkan.Validation)
	assert.Equal(t, 16, cfg.Compute.WorkgroupSize)
	assert.Equal(t, 4, cfg.Multithreading.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 256, cfg.Multithreading.Objects)
	assert.Equal(t, "vkexamples", cfg.Window.Title)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: 800\n"), 0644))

	t.Setenv("VKEXAMPLES_WINDOW_WIDTH", "1024")
	t.Setenv("VKEXAMPLES_COMPUTE_OUTPUT", "out.png")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, "out.png", cfg.Compute.Output)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vulkan:\n  frames_in_flight: 9\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShaderPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shaders.Dir = "/opt/shaders"
	assert.Equal(t, "/opt/shaders/triangle.vert.spv", cfg.ShaderPath("triangle.vert.spv"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "out.png"), expandPath("~/out.png"))

	t.Setenv("VKEX_TEST_DIR", "/tmp/x")
	assert.Equal(t, "/tmp/x/a.png", expandPath("$VKEX_TEST_DIR/a.png"))
}
