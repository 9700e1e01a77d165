package commands

import (
	"github.com/celer/vkexamples/internal/config"
	"github.com/celer/vkexamples/internal/logging"
	"github.com/celer/vkexamples/vkg"
	"github.com/spf13/cobra"

	// registers every example
	_ "github.com/celer/vkexamples/internal/examples/all"
)

var (
	cfgFile  string
	logLevel string

	// set by initConfig, commands that need configuration check configErr first
	cfg       *config.Config
	configErr error
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vkexamples",
	Short: "Runnable Vulkan examples",
	Long: `vkexamples collects small Vulkan programs, each demonstrating one concept:
buffers, pipelines, descriptor sets, texturing, compute shaders and
multithreaded command recording.

Use 'vkexamples list' to see them and 'vkexamples run <name>' to start one.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and logs the error that ended it, if any
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logging.Get().WithError(err).Error("vkexamples failed")
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vkexamples/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "overrides logging.level (debug, info, warn, error)")
}

// initConfig reads the config file and environment, then sets up logging
func initConfig() {
	cfg, configErr = loadConfig(cfgFile, logLevel)
	if configErr != nil {
		return
	}
	configErr = logging.Init(cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Console)
	if configErr == nil {
		vkg.SetLogger(logging.Get().WithField("component", "vkg"))
	}
}

func loadConfig(file, level string) (*config.Config, error) {
	c, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if level != "" {
		c.Logging.Level = level
		err = c.Validate()
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func loadedConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return cfg, nil
}
