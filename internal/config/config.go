package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, window.width is VKEXAMPLES_WINDOW_WIDTH
const EnvPrefix = "VKEXAMPLES"

// Config represents the application configuration
type Config struct {
	Window         WindowConfig         `mapstructure:"window"`
	Vulkan         VulkanConfig         `mapstructure:"vulkan"`
	Shaders        ShadersConfig        `mapstructure:"shaders"`
	Compute        ComputeConfig        `mapstructure:"compute"`
	Multithreading MultithreadingConfig `mapstructure:"multithreading"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type VulkanConfig struct {
	Validation bool `mapstructure:"validation"`
	// DeviceIndex selects a physical device, -1 picks the first suitable one
	DeviceIndex    int  `mapstructure:"device_index"`
	FramesInFlight int  `mapstructure:"frames_in_flight"`
	SyncFrames     bool `mapstructure:"sync_frames"`
}

type ShadersConfig struct {
	Dir string `mapstructure:"dir"`
}

type ComputeConfig struct {
	Width         int    `mapstructure:"width"`
	Height        int    `mapstructure:"height"`
	WorkgroupSize int    `mapstructure:"workgroup_size"`
	Output        string `mapstructure:"output"`
}

type MultithreadingConfig struct {
	// Workers is the number of recording goroutines, 0 uses runtime.NumCPU
	Workers int  `mapstructure:"workers"`
	Objects int  `mapstructure:"objects"`
	Overlay bool `mapstructure:"overlay"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "vkexamples",
		},
		Vulkan: VulkanConfig{
			DeviceIndex:    -1,
			FramesInFlight: 2,
		},
		Shaders: ShadersConfig{
			Dir: "shaders",
		},
		Compute: ComputeConfig{
			Width:         3200,
			Height:        2400,
			WorkgroupSize: 32,
			Output:        "mandelbrot.png",
		},
		Multithreading: MultithreadingConfig{
			Objects: 256,
			Overlay: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load loads configuration from file, environment, and defaults
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".vkexamples"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return cfg, nil
}

// MaxWorkgroupSize bounds compute.workgroup_size
const MaxWorkgroupSize = 32

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Vulkan.DeviceIndex < -1 {
		return errors.New("vulkan.device_index must be -1 or a device index")
	}
	if c.Vulkan.FramesInFlight < 1 || c.Vulkan.FramesInFlight > 4 {
		return errors.New("vulkan.frames_in_flight must be between 1 and 4")
	}
	if c.Compute.Width <= 0 || c.Compute.Height <= 0 {
		return errors.Newf("compute size must be positive, got %dx%d", c.Compute.Width, c.Compute.Height)
	}
	// the group is square, 32x32 is already the most invocations any device offers
	if c.Compute.WorkgroupSize < 1 || c.Compute.WorkgroupSize > MaxWorkgroupSize {
		return errors.Newf("compute.workgroup_size must be between 1 and %d", MaxWorkgroupSize)
	}
	if c.Compute.Output == "" {
		return errors.New("compute.output must not be empty")
	}
	if c.Multithreading.Workers < 0 {
		return errors.New("multithreading.workers must not be negative")
	}
	if c.Multithreading.Objects < 1 {
		return errors.New("multithreading.objects must be at least 1")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return errors.Newf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// ShaderPath returns the path of a compiled shader inside the shader directory
func (c *Config) ShaderPath(name string) string {
	return filepath.Join(c.Shaders.Dir, name)
}

// ExpandPaths expands ~ and environment variables in paths
func (c *Config) ExpandPaths() {
	c.Shaders.Dir = expandPath(c.Shaders.Dir)
	c.Compute.Output = expandPath(c.Compute.Output)
	c.Logging.File = expandPath(c.Logging.File)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("window.width", cfg.Window.Width)
	v.SetDefault("window.height", cfg.Window.Height)
	v.SetDefault("window.title", cfg.Window.Title)

	v.SetDefault("vulkan.validation", cfg.Vulkan.Validation)
	v.SetDefault("vulkan.device_index", cfg.Vulkan.DeviceIndex)
	v.SetDefault("vulkan.frames_in_flight", cfg.Vulkan.FramesInFlight)
	v.SetDefault("vulkan.sync_frames", cfg.Vulkan.SyncFrames)

	v.SetDefault("shaders.dir", cfg.Shaders.Dir)

	v.SetDefault("compute.width", cfg.Compute.Width)
	v.SetDefault("compute.height", cfg.Compute.Height)
	v.SetDefault("compute.workgroup_size", cfg.Compute.WorkgroupSize)
	v.SetDefault("compute.output", cfg.Compute.Output)

	v.SetDefault("multithreading.workers", cfg.Multithreading.Workers)
	v.SetDefault("multithreading.objects", cfg.Multithreading.Objects)
	v.SetDefault("multithreading.overlay", cfg.Multithreading.Overlay)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}
