// Package config loads CLI-level compiler configuration from an optional
// leo.yaml project file: the inlining depth limit and the list of
// recognized annotations beyond the built-in set.
// compiler.Options is the in-memory result internal/sema actually consumes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ProvableHQ/leo/internal/compiler"
)

// File is the on-disk shape of leo.yaml.
type File struct {
	EntryPoints       []string `yaml:"entry_points"`
	Annotations       []string `yaml:"annotations"`
	InlineDepthLimit  int      `yaml:"inline_depth_limit"`
	Verbose           bool     `yaml:"verbose"`
}

// Load reads and parses the leo.yaml project config at path, merging it
// over compiler.DefaultOptions. A missing file is not an error: Load
// returns the hardcoded defaults.
func Load(path string) (compiler.Options, error) {
	opts := compiler.DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return opts, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if len(f.EntryPoints) > 0 {
		opts.EntryPoints = f.EntryPoints
	}
	if len(f.Annotations) > 0 {
		opts.RecognizedAnnotations = append(opts.RecognizedAnnotations, f.Annotations...)
	}
	if f.InlineDepthLimit > 0 {
		opts.InlineDepthLimit = f.InlineDepthLimit
	}
	opts.Verbose = f.Verbose
	return opts, nil
}
