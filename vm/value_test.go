package vm

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthiness(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{None, false},
		{NumberValue(0), false},
		{NumberValue(math.Copysign(0, -1)), false},
		{NumberValue(1), true},
		{NumberValue(-2.5), true},
		{NumberValue(math.NaN()), true},
		{BoolTrue, true},
		{BoolFalse, false},
		{StrValue(""), false},
		{StrValue("x"), true},
		{NewFunction(&Closure{}), true},
		{NewNative("f", nil), true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.AsBool(), "%s", c.v.Debug())
	}
}

func TestNumberDisplay(t *testing.T) {
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "3.0", NumberValue(3).Debug())
	assert.Equal(t, "0.5", NumberValue(0.5).String())
	assert.Equal(t, "0.5", NumberValue(0.5).Debug())
	assert.Equal(t, "-7", NumberValue(-7).String())
	assert.Equal(t, "inf", NumberValue(math.Inf(1)).String())
	assert.Equal(t, "-inf", NumberValue(math.Inf(-1)).Debug())
	assert.Equal(t, "NaN", NumberValue(math.NaN()).String())
}

func TestValueDisplay(t *testing.T) {
	assert.Equal(t, "null", None.String())
	assert.Equal(t, "true", BoolTrue.String())
	assert.Equal(t, "hi", StrValue("hi").String())
	assert.Equal(t, `"hi"`, StrValue("hi").Debug())
	assert.Equal(t, "<native print>", NewNative("print", nil).String())
	assert.True(t, strings.HasPrefix(NewFunction(&Closure{}).String(), "function:"))
}

func TestValueTypes(t *testing.T) {
	assert.Equal(t, "null", None.Type())
	assert.Equal(t, "number", NumberValue(1).Type())
	assert.Equal(t, "boolean", BoolFalse.Type())
	assert.Equal(t, "string", StrValue("").Type())
	assert.Equal(t, "function", NewFunction(&Closure{}).Type())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(None, None))
	assert.True(t, Equal(NumberValue(2), NumberValue(2)))
	assert.False(t, Equal(NumberValue(math.NaN()), NumberValue(math.NaN())))
	assert.False(t, Equal(NumberValue(1), BoolTrue))
	assert.False(t, Equal(StrValue(""), None))
	assert.True(t, Equal(StrValue("a"), StrValue("a")))

	body := func() *Closure {
		return &Closure{Code: []Instruction{{Op: ReturnNoneOp()}}, Numbers: []float64{1}}
	}
	assert.True(t, Equal(NewFunction(body()), NewFunction(body())))
	assert.True(t, Equal(NewNative("print", nil), NewNative("print", nil)))
	assert.False(t, Equal(NewNative("print", nil), NewFunction(body())))
}

func TestClosureEqualNumbersByBits(t *testing.T) {
	a := &Closure{Numbers: []float64{0}}
	b := &Closure{Numbers: []float64{math.Copysign(0, -1)}}
	assert.False(t, a.Equal(b))
	assert.True(t, (&Closure{Numbers: []float64{math.NaN()}}).Equal(&Closure{Numbers: []float64{math.NaN()}}))
}
