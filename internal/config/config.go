// Package config loads the CLI's project-level configuration file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project config file cmd/rlint looks for in the current
// directory when no --config flag is given.
const FileName = ".rlint.yaml"

// Config is the on-disk project configuration: the style-lint and
// max-errors knobs parse() exposes as options, plus the external-symbol
// manifests a project wants consulted during lint.
type Config struct {
	RecordStyleLint bool     `yaml:"record_style_lint"`
	MaxErrors       int      `yaml:"max_errors"`
	ExternalsFiles  []string `yaml:"externals_files"`
}

// Default returns the documented option defaults.
func Default() Config {
	return Config{RecordStyleLint: false, MaxErrors: 1000}
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error — callers get the defaults back.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
