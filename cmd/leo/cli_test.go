package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withWorkDir runs fn with the process cwd switched to dir, restoring the
// original cwd afterward. Subcommands resolve --manifest/--config relative
// to the cwd, matching how a real package directory invocation behaves.
func withWorkDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(old)) }()
	fn()
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, _ := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestNewScaffoldsPackage(t *testing.T) {
	dir := t.TempDir()
	withWorkDir(t, dir, func() {
		_, err := runCLI(t, "new", "hello")
		require.NoError(t, err)

		require.FileExists(t, filepath.Join(dir, "hello", "program.json"))
		require.FileExists(t, filepath.Join(dir, "hello", "src", "main.leo"))
	})
}

func TestNewRefusesExistingPackage(t *testing.T) {
	dir := t.TempDir()
	withWorkDir(t, dir, func() {
		_, err := runCLI(t, "new", "hello")
		require.NoError(t, err)

		_, err = runCLI(t, "new", "hello")
		require.Error(t, err)
	})
}

func TestBuildCompilesScaffoldedPackage(t *testing.T) {
	dir := t.TempDir()
	withWorkDir(t, dir, func() {
		_, err := runCLI(t, "new", "hello")
		require.NoError(t, err)

		pkgDir := filepath.Join(dir, "hello")
		withWorkDir(t, pkgDir, func() {
			_, err := runCLI(t, "build")
			require.NoError(t, err)
		})
	})
}

func TestRunReportsNotImplemented(t *testing.T) {
	dir := t.TempDir()
	withWorkDir(t, dir, func() {
		_, err := runCLI(t, "new", "hello")
		require.NoError(t, err)

		pkgDir := filepath.Join(dir, "hello")
		withWorkDir(t, pkgDir, func() {
			_, err := runCLI(t, "run")
			require.Error(t, err)
		})
	})
}

func TestTestCommandFindsNoTests(t *testing.T) {
	dir := t.TempDir()
	withWorkDir(t, dir, func() {
		_, err := runCLI(t, "new", "hello")
		require.NoError(t, err)

		pkgDir := filepath.Join(dir, "hello")
		withWorkDir(t, pkgDir, func() {
			out, err := runCLI(t, "test")
			require.NoError(t, err)
			_ = out
		})
	})
}
