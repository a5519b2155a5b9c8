// ABOUTME: Entry point for the fuelwise CLI
// ABOUTME: Fleet fuel control client with an interactive terminal interface

package main

import (
	"fmt"
	"os"

	"github.com/fuelwise/fuelwise-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
