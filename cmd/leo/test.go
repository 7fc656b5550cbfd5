package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProvableHQ/leo/internal/asg"
	"github.com/ProvableHQ/leo/internal/source"
)

func newTestCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Compile the package and list its @test functions",
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
					return fmt.Errorf("leo: %q has compile errors, not testing", man.Program.Name)
				}
			}

			var tests []asg.Definition
			for _, def := range u.Program().Definitions() {
				if def.Kind == asg.DefFunction && def.Category == asg.Test {
					tests = append(tests, def)
				}
			}
			if len(tests) == 0 {
				fmt.Println("no @test functions found")
				return nil
			}
			for _, t := range tests {
				fmt.Printf("%s ... %s\n", t.Name, runTest(t))
			}
			return nil
		},
	}
}

// runTest would evaluate a @test function's body against its witness
// circuit and report pass/fail. Concrete execution needs the same
// ASG-to-bytecode lowering run skips, so it is out of scope here too; test
// discovery and listing are real, execution is stubbed.
func runTest(def asg.Definition) string {
	return "SKIP (execution not implemented)"
}
