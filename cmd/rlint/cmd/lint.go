package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/rlint"
	"github.com/aledsdavies/rlint/diag"
	"github.com/aledsdavies/rlint/internal/config"
	"github.com/aledsdavies/rlint/internal/symbolsource"
)

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Parse a file and resolve references against an external-symbol set",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	files := flagExternalsFiles
	cfgPath := flagConfigFile
	if cfgPath == "" {
		cfgPath = config.FileName
	}
	if cfg, err := config.Load(cfgPath); err == nil {
		files = append(append([]string(nil), files...), cfg.ExternalsFiles...)
	}

	externals, err := symbolsource.LoadAll(files)
	if err != nil {
		return fmt.Errorf("loading external symbols: %w", err)
	}

	diags := rlint.Lint(string(source), path, externals, loadOptions())

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rlint.ToJSON(diags, true))
	}

	printDiagnostics(os.Stdout, path, diags)
	for _, d := range diags {
		if d.Severity == diag.Error {
			os.Exit(1)
		}
	}
	return nil
}
