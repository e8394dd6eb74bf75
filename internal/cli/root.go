// Package cli implements the searchctl command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/app"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/config"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	catalogFile string
	logLevel    string
	jsonOutput  bool

	application *app.App
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "searchctl",
	Short: "Query the Altorra property search from the terminal",
	Long: `searchctl runs the same parser, ranker and click store as the HTTP server,
configured from the same environment variables (.env is read if present).

Examples:
  searchctl search "apartamento vista al mar 3h"
  searchctl click P-101
  searchctl vocab boca
  searchctl watch < keystrokes.txt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "completion":
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if catalogFile != "" {
			cfg.Catalog.File = catalogFile
		}

		log := logger.NewWithOutput(os.Stderr, logLevel, "text")
		application, err = app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		if err := application.Search.Load(cmd.Context()); err != nil {
			return fmt.Errorf("catalog unavailable: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application != nil {
			return application.Close()
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "Read the catalog from this file instead of CATALOG_URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level for diagnostics on stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
