package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/lumen"
	"github.com/timewinder-dev/lumen/cas"
)

var outputPath string

var compileCmd = &cobra.Command{
	Use:   "compile PATH",
	Short: "Compile a program to a bytecode image",
	Args:  cobra.ExactArgs(1),
	Run:   compileCommand,
}

func init() {
	addCacheFlags(compileCmd)
	compileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Image file to write (defaults to PATH with a "+lumen.ImageExt+" extension)")
}

func imagePath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + lumen.ImageExt
}

func compileCommand(cmd *cobra.Command, args []string) {
	prog := loadProgram(cmd, args[0])
	out := outputPath
	if out == "" {
		out = imagePath(prog.Path)
	}
	if err := prog.WriteImage(out); err != nil {
		fatal(out, err)
	}
	sum, err := cas.Sum(prog.Closure)
	if err != nil {
		fatal(prog.Path, err)
	}
	fmt.Fprintf(os.Stderr, "%s %s %s\n", color.Green.Sprint("wrote"), out, color.Gray.Sprintf("(%s)", sum))
}
