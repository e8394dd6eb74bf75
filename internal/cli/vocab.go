package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var vocabLimit int

var vocabCmd = &cobra.Command{
	Use:   "vocab [prefix]",
	Short: "List vocabulary terms, optionally by prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		resp, err := application.Search.Complete(cmd.Context(), prefix, vocabLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), resp)
		}
		for _, t := range resp.Terms {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	vocabCmd.Flags().IntVarP(&vocabLimit, "limit", "n", 0, "Maximum number of terms (0 = all)")
	rootCmd.AddCommand(vocabCmd)
}
