// Command leo is the Leo compiler frontend's command-line entry point:
// thin subcommands that load a manifest and project config, build an
// internal/compiler.Unit, and render diagnostics.
package main

import "os"

func main() {
	os.Exit(Execute())
}
