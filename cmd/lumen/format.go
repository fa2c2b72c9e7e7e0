package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/timewinder-dev/lumen/frontend"
	"github.com/timewinder-dev/lumen/interp"
	"github.com/timewinder-dev/lumen/vm"
)

// formatError renders err as a single "ERROR where: message" line. Runtime
// errors carry only a position, so the program path is supplied by the
// caller.
func formatError(path string, err error) string {
	var b strings.Builder
	b.WriteString(color.Red.Sprint("ERROR "))

	var ferr *frontend.Error
	var rerr *interp.Error
	switch {
	case errors.As(err, &ferr):
		b.WriteString(color.Bold.Sprintf("%s:%s: ", ferr.Filename, ferr.Pos))
		b.WriteString(ferr.Msg)
	case errors.As(err, &rerr):
		if rerr.Pos.IsValid() {
			b.WriteString(color.Bold.Sprintf("%s:%s: ", path, rerr.Pos))
		} else {
			b.WriteString(color.Bold.Sprintf("%s: ", path))
		}
		b.WriteString(rerr.Err.Error())
	default:
		b.WriteString(err.Error())
	}
	return b.String()
}

func fatal(path string, err error) {
	fmt.Fprintln(os.Stderr, formatError(path, err))
	os.Exit(1)
}

func formatValue(v vm.Value) string {
	if v == nil {
		return color.Gray.Sprint("<none>")
	}
	return color.Cyan.Sprint(v.Debug())
}
