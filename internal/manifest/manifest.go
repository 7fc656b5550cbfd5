// Package manifest parses a Leo package manifest (program.json/Leo.toml
// equivalent): program identity, version, and dependency list. Loading a
// manifest never fetches a dependency over the network — that remains an
// external collaborator reached through compiler.PackageLoader — but the
// manifest's own shape is real and testable.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Dependency is one [[dependencies]] table entry.
type Dependency struct {
	Name    string `toml:"name"`
	Path    string `toml:"path,omitempty"`
	Network string `toml:"network,omitempty"`
}

// Manifest mirrors a Leo package's Leo.toml: program identity, version, and
// its dependency list.
type Manifest struct {
	Program struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"program"`
	Dependencies []Dependency `toml:"dependencies"`
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses manifest TOML already read into memory.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	if m.Program.Name == "" {
		return nil, fmt.Errorf("manifest: missing required [program] name")
	}
	return &m, nil
}
