// The main package for the hsnlookup executable.
package main

import (
	"github.com/JakeFAU/hsn-lookup/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
