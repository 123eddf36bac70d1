package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/mattsolo1/grove-sweep/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("Error:"), cmd.Describe(err))
		os.Exit(cmd.ExitCode(err))
	}
}
