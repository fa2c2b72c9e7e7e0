package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/lumen/interp"
	"github.com/timewinder-dev/lumen/vm"
)

var traceCmd = &cobra.Command{
	Use:   "trace PATH",
	Short: "Run a program one instruction at a time, printing each frame",
	Args:  cobra.ExactArgs(1),
	Run:   traceCommand,
}

func init() {
	addCacheFlags(traceCmd)
}

func traceCommand(cmd *cobra.Command, args []string) {
	prog := loadProgram(cmd, args[0])
	m, err := prog.NewMachine(os.Stdout)
	if err != nil {
		fatal(prog.Path, err)
	}
	if err := trace(os.Stderr, m, prog.Closure); err != nil {
		fatal(prog.Path, err)
	}
}

// trace drives m with Step, writing the frame state before every
// instruction to w.
func trace(w io.Writer, m *interp.Machine, c *vm.Closure) error {
	base := m.Start(c, nil)
	steps := 0
	for m.Depth() > base {
		fmt.Fprintln(w, color.Gray.Sprint("*******"))
		printFrame(w, m.Depth(), m.Frame())
		res, err := m.Step()
		if err != nil {
			return err
		}
		steps++
		if res != interp.ContinueStep {
			fmt.Fprintln(w, color.Yellow.Sprint(res))
		}
	}
	fmt.Fprintf(w, "%s after %d steps, result %s\n", color.Green.Sprint("Finished"), steps, formatValue(m.Result()))
	return nil
}

func printFrame(w io.Writer, depth int, f *interp.CallFrame) {
	regs := make([]string, len(f.Registers))
	for i, v := range f.Registers {
		regs[i] = fmt.Sprintf("r%d=%s", i, v.Debug())
	}
	fmt.Fprintf(w, "Depth: %d  IP: %d\n", depth, f.IP)
	fmt.Fprintf(w, "Registers: %s\n", strings.Join(regs, " "))
	inst := f.Closure.Code[f.IP]
	fmt.Fprintf(w, "NextOp: %s  %s\n", color.Cyan.Sprint(inst.Op), inst.Pos)
}
