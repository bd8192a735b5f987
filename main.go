// ABOUTME: Entry point for dragon-catalog CLI
// ABOUTME: Command-line and terminal client for the dragon record store

package main

import (
	"fmt"
	"os"

	"github.com/markalston/dragon-catalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
