package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProvableHQ/leo/internal/source"
)

func newBuildCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Compile the current package and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, man, err := loadUnit(gf)
			if err != nil {
				return err
			}
			if err := compileSources(u, ".", gf); err != nil {
				return err
			}
			for _, d := range u.Diagnostics() {
				if d.Severity == source.SeverityError {
					return fmt.Errorf("leo: build of %q failed", man.Program.Name)
				}
			}
			fmt.Printf("compiled %q\n", man.Program.Name)
			return nil
		},
	}
}
