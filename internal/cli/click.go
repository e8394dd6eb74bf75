package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click <id>",
	Short: "Record a click on a property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.Search.RecordClick(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "clicks": n})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d clicks\n", args[0], n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clickCmd)
}
