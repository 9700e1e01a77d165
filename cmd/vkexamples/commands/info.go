package commands

import (
	"github.com/celer/vkexamples/internal/examples"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show Vulkan instance and device capabilities",
	Long:  `Shorthand for 'vkexamples run deviceinfo'.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExample(examples.WithOutput(cmd.Context(), cmd.OutOrStdout()), "deviceinfo")
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
