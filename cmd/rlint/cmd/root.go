// Package cmd implements the rlint CLI's command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagRecordStyleLint bool
	flagMaxErrors       int
	flagJSON            bool
	flagExternalsFiles  []string
	flagConfigFile      string
)

var rootCmd = &cobra.Command{
	Use:   "rlint",
	Short: "A static analyzer for an R-like scripting language",
	Long: `rlint tokenizes, parses, and scope-resolves R-like source files,
reporting unresolved references and syntax diagnostics without ever
evaluating the code.`,
}

// Execute runs the command tree, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(lintCmd)

	for _, c := range []*cobra.Command{parseCmd, lintCmd} {
		c.Flags().BoolVar(&flagRecordStyleLint, "record-style-lint", false, "emit whitespace-style diagnostics")
		c.Flags().IntVar(&flagMaxErrors, "max-errors", 1000, "error diagnostics to emit before stopping early")
		c.Flags().BoolVar(&flagJSON, "json", false, "emit diagnostics as JSON instead of human-readable text")
		c.Flags().StringVar(&flagConfigFile, "config", "", "path to a .rlint.yaml project config (default: ./.rlint.yaml)")
	}

	lintCmd.Flags().StringSliceVar(&flagExternalsFiles, "externals", nil, "external-symbol manifest file(s) (.toml, .yaml, or plain text)")
}
