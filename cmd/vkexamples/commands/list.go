package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/celer/vkexamples/internal/examples"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available examples",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, e := range examples.All() {
		fmt.Fprintf(w, "%s\t%s\n", e.Name(), e.Description())
	}
	return w.Flush()
}
