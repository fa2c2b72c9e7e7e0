package vm

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

type Value interface {
	isValue()
	// Type is the name used in runtime error messages.
	Type() string
	// AsBool is the truthiness used by branches and logical operators.
	AsBool() bool
	// String is the display form written by print.
	String() string
	Debug() string
}

type NoneValue struct{}

var None = NoneValue{}

func (NoneValue) isValue()        {}
func (NoneValue) Type() string    { return "null" }
func (NoneValue) AsBool() bool    { return false }
func (NoneValue) String() string  { return "null" }
func (n NoneValue) Debug() string { return n.String() }

type NumberValue float64

func (NumberValue) isValue()     {}
func (NumberValue) Type() string { return "number" }
func (n NumberValue) AsBool() bool {
	return n != 0
}

func (n NumberValue) String() string {
	f := float64(n)
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Debug always shows a fractional part, so 3 renders as 3.0.
func (n NumberValue) Debug() string {
	s := n.String()
	f := float64(n)
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return s
	}
	return s + ".0"
}

type BoolValue bool

var (
	BoolTrue  = BoolValue(true)
	BoolFalse = BoolValue(false)
)

func (BoolValue) isValue()         {}
func (BoolValue) Type() string     { return "boolean" }
func (b BoolValue) AsBool() bool   { return bool(b) }
func (b BoolValue) String() string { return strconv.FormatBool(bool(b)) }
func (b BoolValue) Debug() string  { return b.String() }

type StrValue string

func (StrValue) isValue()         {}
func (StrValue) Type() string     { return "string" }
func (s StrValue) AsBool() bool   { return s != "" }
func (s StrValue) String() string { return string(s) }
func (s StrValue) Debug() string  { return strconv.Quote(string(s)) }

// Host is the view of the running machine given to native functions.
type Host interface {
	Output() io.Writer
	Global(name string) (Value, bool)
	SetGlobal(name string, v Value)
}

type NativeFunc func(h Host, args []Value) (Value, error)

type Native struct {
	Name string
	Fn   NativeFunc
}

// FunctionValue wraps exactly one of a host-provided native or a shared
// compiled closure.
type FunctionValue struct {
	Native  *Native
	Closure *Closure
}

func NewNative(name string, fn NativeFunc) *FunctionValue {
	return &FunctionValue{Native: &Native{Name: name, Fn: fn}}
}

func NewFunction(c *Closure) *FunctionValue {
	return &FunctionValue{Closure: c}
}

func (*FunctionValue) isValue()     {}
func (*FunctionValue) Type() string { return "function" }
func (*FunctionValue) AsBool() bool { return true }

func (f *FunctionValue) String() string {
	return f.Debug()
}

func (f *FunctionValue) Debug() string {
	if f.Native != nil {
		return fmt.Sprintf("<native %s>", f.Native.Name)
	}
	return fmt.Sprintf("function:%p", f.Closure)
}

func (f *FunctionValue) IsNative() bool {
	return f.Native != nil
}

// Equal is structural equality. Values of different variants are never
// equal, and numbers follow IEEE comparison so NaN is unequal to itself.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av == bv
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case StrValue:
		bv, ok := b.(StrValue)
		return ok && av == bv
	case *FunctionValue:
		bv, ok := b.(*FunctionValue)
		if !ok {
			return false
		}
		if av.Native != nil || bv.Native != nil {
			return av.Native != nil && bv.Native != nil && av.Native.Name == bv.Native.Name
		}
		return av.Closure.Equal(bv.Closure)
	}
	return false
}
