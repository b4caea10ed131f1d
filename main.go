// The main package for the sealevel executable.
package main

import (
	"github.com/JakeFAU/sealevel/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
