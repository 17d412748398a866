// Package symbolsource loads external-symbol sets — the caller-supplied
// names the resolver treats as defined without local evidence — from
// project manifests in a few common formats.
package symbolsource

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// yamlManifest is the shape of a plain-YAML symbol list:
//
//	symbols:
//	  - mean
//	  - filter
type yamlManifest struct {
	Symbols []string `yaml:"symbols"`
}

// tomlManifest is the shape of a TOML symbol manifest, for projects that
// keep their package/dependency manifests in TOML rather than YAML:
//
//	[symbols]
//	names = ["mean", "filter"]
type tomlManifest struct {
	Symbols struct {
		Names []string `toml:"names"`
	} `toml:"symbols"`
}

// Load reads an external-symbol manifest from path, dispatching on file
// extension: ".toml" uses go-toml, ".yaml"/".yml" use yaml.v3, and any other
// extension is read as plain newline-delimited text (one symbol per line,
// blank lines and "#" lines skipped), for manifests with no structure at all.
func Load(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var names []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var m tomlManifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		names = m.Symbols.Names
	case ".yaml", ".yml":
		var m yamlManifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		names = m.Symbols
	default:
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				names = append(names, line)
			}
		}
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

// LoadAll merges the symbol sets from every path in paths, skipping paths
// that don't exist.
func LoadAll(paths []string) (map[string]struct{}, error) {
	merged := make(map[string]struct{})
	for _, p := range paths {
		set, err := Load(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for name := range set {
			merged[name] = struct{}{}
		}
	}
	return merged, nil
}
