package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const mainTemplate = `@entry
function main(a: u32, b: u32) -> u32 {
    return a + b;
}
`

const manifestTemplate = `[program]
name = "%s"
version = "0.1.0"

dependencies = []
`

func newNewCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new Leo package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			dir := name
			if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
				return fmt.Errorf("leo: new: %w", err)
			}
			manifestPath := filepath.Join(dir, "program.json")
			if _, err := os.Stat(manifestPath); err == nil {
				return fmt.Errorf("leo: new: %s already exists", manifestPath)
			}
			if err := os.WriteFile(manifestPath, []byte(fmt.Sprintf(manifestTemplate, name)), 0o644); err != nil {
				return fmt.Errorf("leo: new: %w", err)
			}
			mainPath := filepath.Join(dir, "src", "main.leo")
			if err := os.WriteFile(mainPath, []byte(mainTemplate), 0o644); err != nil {
				return fmt.Errorf("leo: new: %w", err)
			}
			fmt.Printf("created package %q in %s\n", name, dir)
			return nil
		},
	}
}
