package interp

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/tale/internal/value"
)

// Machine is one sandboxed run: its captured stdout, its input tape, and the
// restricted builtins/import tables it was constructed with.
type Machine struct {
	Stdout  *strings.Builder
	Input   *InputTape
	modules map[string]value.Value
}

// NewMachine builds a fresh sandbox over a deterministic input tape.
func NewMachine(inputs []string) *Machine {
	return &Machine{
		Stdout: &strings.Builder{},
		Input:  NewInputTape(inputs),
	}
}

// Run executes an already-built statement block top to bottom in a fresh
// module scope with the builtins installed. Printed output accumulates in
// m.Stdout; only the error is returned.
func (m *Machine) Run(block Block) error {
	env := NewEnv(nil)
	m.installBuiltins(env)
	_, err := m.ExecBlock(block, env, nil)
	return err
}

// control-flow signals, propagated as errors up the Go call stack the way a
// tree-walking interpreter without its own VM loop has to.
type breakSignal struct{}
type continueSignal struct{}
type returnSignal struct{ Value value.Value }
type raiseSignal struct{ Value value.Value }

func (breakSignal) Error() string    { return "break outside loop" }
func (continueSignal) Error() string { return "continue outside loop" }
func (returnSignal) Error() string   { return "return outside function" }
func (raiseSignal) Error() string    { return "unhandled exception" }

func rangeError(v value.Value) error {
	return fmt.Errorf("'%s' object is not iterable", v.Kind)
}

// ClassDef is a minimal class: its constructor body (for field init via an
// `init` method) and its method table, captured at `class Name:` time.
type ClassDef struct {
	Name    string
	Methods map[string]*Node
	Env     *Env
}

// Instance is a `class`-built object: fields plus a reference back to its
// class for method lookup, mutated in place (unlike TALE's otherwise
// immutable List/Map values) because Python object identity demands it.
type Instance struct {
	Class  *ClassDef
	Fields map[string]value.Value
}
