package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/spf13/cobra"
)

var topK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank catalog properties for a free-text query",
	Long: `Parses the query into phrases, tokens and constraints, then prints the ranked suggestions.

Examples:
  searchctl search "casa 2b 1g <=400m"
  searchctl search piscna --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &model.SearchRequest{Query: strings.Join(args, " ")}
		if topK > 0 {
			req.Options = &model.SearchOptions{TopK: topK}
		}
		resp, err := application.Search.Search(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), resp)
		}
		printResults(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&topK, "top", "k", 0, "Maximum number of suggestions")
	rootCmd.AddCommand(searchCmd)
}

func printResults(w io.Writer, resp *model.SearchResponse) {
	if in := resp.Intent; in != nil {
		for typed, fixed := range in.Corrections {
			fmt.Fprintf(w, "corrected %q -> %q\n", typed, fixed)
		}
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}
	if resp.Relaxed {
		fmt.Fprintln(w, "no exact matches, showing partial ones")
	}
	for i, s := range resp.Results {
		p := s.Property
		fmt.Fprintf(w, "%2d. %-8s %7.1f  %s", i+1, p.ID, s.Score, p.Title)
		if p.City != "" {
			fmt.Fprintf(w, " (%s)", p.City)
		}
		fmt.Fprintf(w, "  [%s]\n", strings.Join(s.MatchedReasons, ", "))
	}
	if resp.Total > len(resp.Results) {
		fmt.Fprintf(w, "... %d more\n", resp.Total-len(resp.Results))
	}
}
