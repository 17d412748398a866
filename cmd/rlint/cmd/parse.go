package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/rlint"
	"github.com/aledsdavies/rlint/internal/config"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Tokenize and parse a file, reporting syntax diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func loadOptions() rlint.Options {
	path := flagConfigFile
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.Default()
	}

	opts := rlint.Options{
		RecordStyleLint: cfg.RecordStyleLint || flagRecordStyleLint,
		MaxErrors:       cfg.MaxErrors,
	}
	if flagMaxErrors != 1000 {
		opts.MaxErrors = flagMaxErrors
	}
	return opts
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	results := rlint.Parse(string(source), loadOptions())

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rlint.ToJSON(results.Diagnostics, true))
	}

	printDiagnostics(os.Stdout, path, results.Diagnostics)
	if results.HasErrors() {
		os.Exit(1)
	}
	return nil
}
