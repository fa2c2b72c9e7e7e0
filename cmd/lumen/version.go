package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timewinder-dev/lumen/vm"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lumen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lumen version %s (bytecode image v%d, compiler v%d)\n", version, vm.ImageVersion, vm.CompilerVersion)
	},
}
