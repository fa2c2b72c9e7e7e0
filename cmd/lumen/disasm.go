package main

import (
	"os"

	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm PATH",
	Short: "Print the bytecode listing of a program or image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog := loadProgram(cmd, args[0])
		if err := prog.Closure.Disassemble(os.Stdout); err != nil {
			fatal(prog.Path, err)
		}
	},
}

func init() {
	addCacheFlags(disasmCmd)
}
