package interp

import (
	"io"
	"maps"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/lumen/ast"
	"github.com/timewinder-dev/lumen/vm"
)

// Machine executes compiled closures. The call stack is its only execution
// state; the global table persists across runs on the same machine.
type Machine struct {
	ID      uuid.UUID
	Globals map[string]vm.Value
	Stack   []*CallFrame
	Out     io.Writer

	// MaxSteps bounds the number of instructions a single Run may execute.
	// Zero means unbounded.
	MaxSteps uint64
	// steps counts every instruction run through invoke; each run measures
	// its budget from the count at entry.
	steps uint64

	// nativePos is the position of the CALL running the current native, so
	// host calls made from inside it are positioned.
	nativePos ast.Position

	// result holds the value of the most recent RETURN; nil means no value.
	result vm.Value
}

type Option func(*Machine)

func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.Out = w
	}
}

func WithGlobals(globals map[string]vm.Value) Option {
	return func(m *Machine) {
		maps.Copy(m.Globals, globals)
	}
}

func WithStepLimit(n uint64) Option {
	return func(m *Machine) {
		m.MaxSteps = n
	}
}

// NewMachine returns a machine with the builtin natives installed and output
// going to stdout unless overridden.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		ID:      uuid.New(),
		Globals: make(map[string]vm.Value),
		Out:     os.Stdout,
	}
	for name, fn := range Builtins {
		m.Register(name, fn)
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Register installs a native function as a global.
func (m *Machine) Register(name string, fn vm.NativeFunc) {
	m.Globals[name] = vm.NewNative(name, fn)
}

func (m *Machine) Output() io.Writer {
	return m.Out
}

func (m *Machine) Global(name string) (vm.Value, bool) {
	v, ok := m.Globals[name]
	return v, ok
}

func (m *Machine) SetGlobal(name string, v vm.Value) {
	m.Globals[name] = v
}

func (m *Machine) Depth() int {
	return len(m.Stack)
}

// Frame returns the executing call frame, or nil if the stack is empty.
func (m *Machine) Frame() *CallFrame {
	if len(m.Stack) == 0 {
		return nil
	}
	return m.Stack[len(m.Stack)-1]
}

// Start pushes a frame for c with the given arguments and no destination.
// It returns the stack depth the run completes at.
func (m *Machine) Start(c *vm.Closure, args []vm.Value) int {
	base := len(m.Stack)
	m.Stack = append(m.Stack, NewCallFrame(c, args))
	m.result = nil
	log.Debug().
		Str("machine", m.ID.String()).
		Int("depth", base).
		Int("registers", int(c.Registers)).
		Msg("start")
	return base
}

// Result is the value delivered by the last RETURN. It is nil when that
// return carried no value.
func (m *Machine) Result() vm.Value {
	return m.result
}

// Run executes c to completion at the current stack depth.
func (m *Machine) Run(c *vm.Closure) (vm.Value, error) {
	return m.invoke(c, nil)
}

// CallValue invokes fn with args from the host. A function returning no
// value yields None. A nil fn is treated as None.
func (m *Machine) CallValue(fn vm.Value, args []vm.Value) (vm.Value, error) {
	if fn == nil {
		fn = vm.None
	}
	f, ok := fn.(*vm.FunctionValue)
	if !ok {
		return nil, &Error{Err: &CannotCallError{Type: fn.Type()}, Pos: m.nativePos}
	}
	if f.IsNative() {
		v, err := m.callNative(f.Native, args, m.nativePos)
		if err != nil {
			return nil, &Error{Err: &CustomError{Message: err.Error(), Err: err}, Pos: m.nativePos}
		}
		if v == nil {
			v = vm.None
		}
		return v, nil
	}
	v, err := m.invoke(f.Closure, args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = vm.None
	}
	return v, nil
}

func (m *Machine) invoke(c *vm.Closure, args []vm.Value) (vm.Value, error) {
	base := m.Start(c, args)
	start := m.steps
	for len(m.Stack) > base {
		if m.MaxSteps > 0 && m.steps-start >= m.MaxSteps {
			pos := m.Frame().Pos()
			m.Stack = m.Stack[:base]
			return nil, &Error{Err: ErrStepLimit, Pos: pos}
		}
		m.steps++
		if _, err := m.Step(); err != nil {
			m.Stack = m.Stack[:base]
			log.Debug().Str("machine", m.ID.String()).Err(err).Msg("run aborted")
			return nil, err
		}
	}
	log.Debug().
		Str("machine", m.ID.String()).
		Uint64("steps", m.steps-start).
		Msg("run finished")
	return m.result, nil
}

// callNative runs n with pos recorded as the calling position.
func (m *Machine) callNative(n *vm.Native, args []vm.Value, pos ast.Position) (vm.Value, error) {
	prev := m.nativePos
	m.nativePos = pos
	defer func() { m.nativePos = prev }()
	return n.Fn(m, args)
}

// Run executes c on a fresh machine built from opts.
func Run(c *vm.Closure, opts ...Option) (vm.Value, error) {
	return NewMachine(opts...).Run(c)
}
