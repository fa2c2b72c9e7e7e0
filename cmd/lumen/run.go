package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/lumen"
	"github.com/timewinder-dev/lumen/interp"
)

var (
	cacheDir     string
	cacheEntries int
	maxSteps     uint64
	disasmFlag   bool
	resultFlag   bool
)

var runCmd = &cobra.Command{
	Use:   "run PATH",
	Short: "Run a program, bytecode image or project file",
	Args:  cobra.ExactArgs(1),
	Run:   runCommand,
}

func init() {
	addCacheFlags(runCmd)
	runCmd.Flags().Uint64Var(&maxSteps, "max-steps", 0, "Abort after this many instructions (0 means no limit)")
	runCmd.Flags().BoolVar(&disasmFlag, "disasm", false, "Print the bytecode listing to stderr before running")
	runCmd.Flags().BoolVar(&resultFlag, "result", false, "Print the value returned by the top-level chunk")
}

func addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cacheDir, "cache", "", "Directory for the compile cache")
	cmd.Flags().IntVar(&cacheEntries, "cache-entries", 0, "In-memory cache size in objects (0 uses the default)")
}

func loadProgram(cmd *cobra.Command, path string) *lumen.Program {
	prog, err := lumen.Load(path, lumen.Options{CacheDir: cacheDir, CacheEntries: cacheEntries})
	if err != nil {
		fatal(path, err)
	}
	if prog.Project != nil && prog.Project.Log.Level != "" && !cmd.Flags().Changed("log-level") {
		setLogLevel(prog.Project.Log.Level)
	}
	log.Debug().Str("path", prog.Path).Bool("cached", prog.Cached).Msg("loaded program")
	return prog
}

func runCommand(cmd *cobra.Command, args []string) {
	prog := loadProgram(cmd, args[0])
	if disasmFlag {
		if err := prog.Closure.Disassemble(os.Stderr); err != nil {
			fatal(prog.Path, err)
		}
	}
	var opts []interp.Option
	if maxSteps > 0 {
		opts = append(opts, interp.WithStepLimit(maxSteps))
	}
	v, err := prog.Run(os.Stdout, opts...)
	if err != nil {
		fatal(prog.Path, err)
	}
	if resultFlag {
		fmt.Println(formatValue(v))
	}
}
