// The main package for the fighterscrape executable.
package main

import (
	"github.com/JakeFAU/ufcstats-fighters/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
