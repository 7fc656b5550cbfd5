package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProvableHQ/leo/internal/compiler"
	"github.com/ProvableHQ/leo/internal/source"
)

func newRunCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <entry-point>",
		Short: "Compile and execute a program entry point",
		Args:  cobra.MaximumNArgs(1),
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
					return fmt.Errorf("leo: %q has compile errors, not running", man.Program.Name)
				}
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if err := executeEntryPoint(u, name); err != nil {
				return fmt.Errorf("leo: run: %w", err)
			}
			return nil
		},
	}
}

// executeEntryPoint would lower the resolved ASG to bytecode and evaluate
// it against witness inputs. That lowering and the R1CS/circuit execution
// backend live outside the compiler frontend entirely, so this seam always
// reports ErrNotImplemented rather than pretending to execute anything.
func executeEntryPoint(u *compiler.Unit, name string) error {
	return ErrNotImplemented
}
