package interp

import (
	"io"
	"strings"

	"github.com/timewinder-dev/lumen/vm"
)

// Builtins maps each global installed by NewMachine to its implementation.
var Builtins = map[string]vm.NativeFunc{
	"print": builtinPrint,
}

// builtinPrint writes the display form of each argument with no separator,
// then a newline.
func builtinPrint(h vm.Host, args []vm.Value) (vm.Value, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.String())
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(h.Output(), sb.String()); err != nil {
		return nil, err
	}
	return vm.None, nil
}
