package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/lumen"
	"github.com/timewinder-dev/lumen/interp"
)

func TestFormatError(t *testing.T) {
	_, err := lumen.Compile("bad.star", []byte("x = (\n"))
	require.Error(t, err)
	msg := color.ClearCode(formatError("bad.star", err))
	assert.Contains(t, msg, "ERROR bad.star:")

	c, err := lumen.Compile("prog.star", []byte("x = 1\nx()\n"))
	require.NoError(t, err)
	_, err = interp.Run(c)
	msg = color.ClearCode(formatError("prog.star", err))
	assert.Equal(t, "ERROR prog.star:2:1: cannot call number", msg)

	msg = color.ClearCode(formatError("prog.star", errors.New("boom")))
	assert.Equal(t, "ERROR boom", msg)
}

func TestImagePath(t *testing.T) {
	assert.Equal(t, "dir/prog.lbc", imagePath("dir/prog.star"))
	assert.Equal(t, "noext.lbc", imagePath("noext"))
}

func TestTrace(t *testing.T) {
	c, err := lumen.Compile("t.star", []byte("def f(a):\n    return a\nf(1)\n"))
	require.NoError(t, err)
	var out bytes.Buffer
	m := interp.NewMachine()
	require.NoError(t, trace(&out, m, c))
	text := color.ClearCode(out.String())
	assert.Contains(t, text, "NextOp: ")
	assert.Contains(t, text, "Call\n")
	assert.Contains(t, text, "Return\n")
	assert.Contains(t, text, "Finished after")
	assert.Zero(t, m.Depth())
}
