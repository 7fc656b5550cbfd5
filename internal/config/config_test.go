package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "leo.yaml"))
	require.NoError(t, err)
	require.Equal(t, 32, opts.InlineDepthLimit)
	require.False(t, opts.Verbose)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leo.yaml")
	contents := `
entry_points:
  - main
annotations:
  - custom_check
inline_depth_limit: 8
verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, opts.EntryPoints)
	require.Contains(t, opts.RecognizedAnnotations, "custom_check")
	require.Equal(t, 8, opts.InlineDepthLimit)
	require.True(t, opts.Verbose)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: [this is not a bool"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
