package interp

import "github.com/aledsdavies/tale/internal/value"

// Env is a lexical scope chain, shared by closures the way Python closures
// capture their defining scope by reference.
type Env struct {
	vars    map[string]value.Value
	parent  *Env
	root    *Env            // module-level scope, for `global`
	globals map[string]bool // names declared `global` in this scope
}

func NewEnv(parent *Env) *Env {
	e := &Env{vars: make(map[string]value.Value), parent: parent}
	if parent != nil {
		e.root = parent.root
	} else {
		e.root = e
	}
	return e
}

// Get looks up name through the scope chain.
func (e *Env) Get(name string) (value.Value, bool) {
	if e.globals[name] {
		return e.root.Get(name)
	}
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Set assigns to the nearest scope already defining name, falling back to
// defining it in the local scope (Python's implicit-local-assignment rule),
// unless name was declared `global` in this scope.
func (e *Env) Set(name string, v value.Value) {
	if e.globals[name] {
		e.root.vars[name] = v
		return
	}
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

// Define binds name in the local scope unconditionally (function
// parameters, for-loop targets).
func (e *Env) Define(name string, v value.Value) {
	e.vars[name] = v
}

// DeclareGlobal marks name as resolving against the module scope for the
// remainder of this scope's lifetime (the `global` statement).
func (e *Env) DeclareGlobal(name string) {
	if e.globals == nil {
		e.globals = make(map[string]bool)
	}
	e.globals[name] = true
	if _, ok := e.root.vars[name]; !ok {
		e.root.vars[name] = value.NullValue()
	}
}
