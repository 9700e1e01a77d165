package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/celer/vkexamples/internal/examples"
	"github.com/celer/vkexamples/internal/logging"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <example>",
	Short: "Run an example",
	Long: `Run an example until its window is closed or the process is interrupted.

Headless examples such as computeshader and deviceinfo exit once they are done.`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return examples.Names(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExample(examples.WithOutput(cmd.Context(), cmd.OutOrStdout()), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runExample(ctx context.Context, name string) error {
	e, ok := examples.Lookup(name)
	if !ok {
		return errors.Newf("unknown example %q, see 'vkexamples list'", name)
	}

	c, err := loadedConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.WithExample(name)
	log.Info("starting")
	start := time.Now()

	err = e.Run(ctx, c)
	if err != nil {
		return errors.Wrapf(err, "running %s", name)
	}
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("finished")
	return nil
}
