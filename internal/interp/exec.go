package interp

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/tale/internal/ast"
	"github.com/aledsdavies/tale/internal/errs"
	"github.com/aledsdavies/tale/internal/exprparser"
	"github.com/aledsdavies/tale/internal/value"
)

// ExecBlock runs every statement in block in order, short-circuiting on the
// first error or control signal. yield is non-nil only while executing a
// generator function's body.
func (m *Machine) ExecBlock(block Block, env *Env, yield func(value.Value) bool) (value.Value, error) {
	for _, n := range block {
		v, err := m.execStmt(n, env, yield)
		if err != nil {
			return v, err
		}
	}
	return value.NullValue(), nil
}

func (m *Machine) execStmt(n *Node, env *Env, yield func(value.Value) bool) (value.Value, error) {
	switch n.Kind {
	case KSimple:
		return m.execSimple(n.Text, env, yield)

	case KIf:
		for _, br := range n.Branches {
			cond, err := m.evalExprText(br.Cond, env)
			if err != nil {
				return value.Value{}, err
			}
			if cond.Truthy() {
				return m.ExecBlock(br.Body, env, yield)
			}
		}
		return m.ExecBlock(n.Else, env, yield)

	case KWhile:
		for {
			cond, err := m.evalExprText(n.Cond, env)
			if err != nil {
				return value.Value{}, err
			}
			if !cond.Truthy() {
				break
			}
			if _, err := m.ExecBlock(n.Body, env, yield); err != nil {
				if _, ok := err.(breakSignal); ok {
					break
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return value.Value{}, err
			}
		}
		return value.NullValue(), nil

	case KFor:
		iterVal, err := m.evalExprText(n.Iter, env)
		if err != nil {
			return value.Value{}, err
		}
		if iterVal.Kind == value.Foreign {
			if gen, ok := iterVal.Foreign().(*generator); ok {
				return m.execForGenerator(gen, n, env, yield)
			}
		}
		items, err := iterableItems(iterVal)
		if err != nil {
			return value.Value{}, err
		}
		for _, it := range items {
			env.Define(n.Var, it)
			if _, err := m.ExecBlock(n.Body, env, yield); err != nil {
				if _, ok := err.(breakSignal); ok {
					break
				}
				if _, ok := err.(continueSignal); ok {
					continue
				}
				return value.Value{}, err
			}
		}
		return value.NullValue(), nil

	case KDef:
		fn := m.makeFunction(n, env)
		env.Define(n.Name, fn)
		return value.NullValue(), nil

	case KClass:
		cls := &ClassDef{Name: n.Name, Methods: map[string]*Node{}, Env: env}
		for _, stmt := range n.Body {
			if stmt.Kind == KDef {
				cls.Methods[stmt.Name] = stmt
			}
		}
		env.Define(n.Name, value.CallableValue(n.Name, func(args []value.Value) (value.Value, error) {
			inst := &Instance{Class: cls, Fields: map[string]value.Value{}}
			if init, ok := cls.Methods["__init__"]; ok {
				if _, err := m.invokeMethod(init, inst, args); err != nil {
					return value.Value{}, err
				}
			}
			return value.ForeignValue("instance:"+n.Name, inst), nil
		}))
		return value.NullValue(), nil

	case KTry:
		_, err := m.ExecBlock(n.Body, env, yield)
		if err != nil {
			if rs, ok := err.(raiseSignal); ok && n.ExceptBody != nil {
				if n.ExceptName != "" {
					env.Define(n.ExceptName, rs.Value)
				}
				_, err = m.ExecBlock(n.ExceptBody, env, yield)
			} else if _, ok := err.(*errs.RuntimeError); ok && n.ExceptBody != nil {
				if n.ExceptName != "" {
					env.Define(n.ExceptName, value.StrValue(err.Error()))
				}
				_, err = m.ExecBlock(n.ExceptBody, env, yield)
			}
		}
		if n.Finally != nil {
			if _, ferr := m.ExecBlock(n.Finally, env, yield); ferr != nil {
				return value.Value{}, ferr
			}
		}
		return value.Value{}, err

	case KWith:
		target, err := m.evalExprText(n.WithExpr, env)
		if err != nil {
			return value.Value{}, err
		}
		env.Define(n.WithVar, target)
		_, err = m.ExecBlock(n.Body, env, yield)
		if target.Kind == value.FileHandle {
			_, _ = m.fileMethod(target, "close", nil)
		}
		return value.Value{}, err
	}
	return value.NullValue(), nil
}

// execForGenerator iterates a generator lazily, closing it early on break
// so its goroutine doesn't leak.
func (m *Machine) execForGenerator(gen *generator, n *Node, env *Env, yield func(value.Value) bool) (value.Value, error) {
	for {
		v, ok, err := gen.next()
		if err != nil {
			return value.Value{}, err
		}
		if !ok {
			break
		}
		env.Define(n.Var, v)
		if _, err := m.ExecBlock(n.Body, env, yield); err != nil {
			if _, ok := err.(breakSignal); ok {
				gen.close()
				break
			}
			if _, ok := err.(continueSignal); ok {
				continue
			}
			gen.close()
			return value.Value{}, err
		}
	}
	return value.NullValue(), nil
}

// evalExprText parses and evaluates a target-language expression string
// produced by the translator.
func (m *Machine) evalExprText(expr string, env *Env) (value.Value, error) {
	node, err := exprparser.Parse(expr)
	if err != nil {
		return value.Value{}, err
	}
	return m.Eval(node, env)
}

// execSimple runs one translated simple statement, or a `;`-joined sequence
// of them (the shape `ask ... as x` lowers to).
func (m *Machine) execSimple(text string, env *Env, yield func(value.Value) bool) (value.Value, error) {
	for _, part := range splitTopLevel(text, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := m.execOne(part, env, yield)
		if err != nil {
			return v, err
		}
	}
	return value.NullValue(), nil
}

func (m *Machine) execOne(text string, env *Env, yield func(value.Value) bool) (value.Value, error) {
	switch {
	case text == "pass":
		return value.NullValue(), nil
	case strings.HasPrefix(text, "print(") && strings.HasSuffix(text, ", end='')"):
		// The prompt half of a translated `ask`: printed with no trailing
		// newline, since the expression grammar has no keyword arguments.
		v, err := m.evalExprText(text[len("print("):len(text)-len(", end='')")], env)
		if err != nil {
			return value.Value{}, err
		}
		m.Stdout.WriteString(v.String())
		return value.NullValue(), nil
	case text == "break":
		return value.Value{}, breakSignal{}
	case text == "continue":
		return value.Value{}, continueSignal{}

	case text == "return" || strings.HasPrefix(text, "return "):
		tail := strings.TrimSpace(strings.TrimPrefix(text, "return"))
		v := value.NullValue()
		if tail != "" {
			var err error
			v, err = m.evalExprText(tail, env)
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, returnSignal{Value: v}

	case text == "yield" || strings.HasPrefix(text, "yield "):
		tail := strings.TrimSpace(strings.TrimPrefix(text, "yield"))
		v := value.NullValue()
		if tail != "" {
			var err error
			v, err = m.evalExprText(tail, env)
			if err != nil {
				return value.Value{}, err
			}
		}
		if yield != nil && !yield(v) {
			// The consumer closed the generator: end its body here.
			return value.Value{}, returnSignal{Value: value.NullValue()}
		}
		return value.NullValue(), nil

	case text == "raise" || strings.HasPrefix(text, "raise "):
		tail := strings.TrimSpace(strings.TrimPrefix(text, "raise"))
		v := value.StrValue("Exception")
		if tail != "" {
			var err error
			v, err = m.evalExprText(tail, env)
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.Value{}, raiseSignal{Value: v}

	case strings.HasPrefix(text, "global "):
		for _, name := range strings.Split(strings.TrimPrefix(text, "global "), ",") {
			env.DeclareGlobal(strings.TrimSpace(name))
		}
		return value.NullValue(), nil

	case strings.HasPrefix(text, "import ") || strings.HasPrefix(text, "from "):
		return value.NullValue(), m.execImport(text, env)
	}

	if lhs, rhs, ok := splitAssignment(text); ok {
		val, err := m.evalExprText(rhs, env)
		if err != nil {
			return value.Value{}, err
		}
		if err := m.assign(lhs, val, env); err != nil {
			return value.Value{}, err
		}
		return value.NullValue(), nil
	}

	return m.evalExprText(text, env)
}

// splitAssignment finds the top-level `=` that is not part of `==`, `!=`,
// `<=`, or `>=`, and not nested inside brackets/quotes.
func splitAssignment(text string) (lhs, rhs string, ok bool) {
	depth := 0
	inStr := false
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr {
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inStr = true
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			prevOK := i == 0 || !strings.ContainsRune("=!<>", rune(text[i-1]))
			nextOK := i+1 >= len(text) || text[i+1] != '='
			if prevOK && nextOK {
				return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
			}
		}
	}
	return "", "", false
}

func splitTopLevel(text string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	inStr := false
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr {
			cur.WriteByte(c)
			if c == quote {
				inStr = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inStr = true
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if c == sep && depth == 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

// assign writes val into the location described by the target expression
// text: a bare name, a subscript (`d[k]`, `lst[i]`), or an attribute
// (`self.field`) on a class Instance.
func (m *Machine) assign(target string, val value.Value, env *Env) error {
	if parts := splitTopLevel(target, ','); len(parts) > 1 {
		items := val.Items()
		if len(items) != len(parts) {
			return &errs.RuntimeError{Cause: fmt.Errorf("cannot unpack %d values into %d targets", len(items), len(parts))}
		}
		for i, p := range parts {
			if err := m.assign(strings.TrimSpace(p), items[i], env); err != nil {
				return err
			}
		}
		return nil
	}

	node, err := exprparser.Parse(target)
	if err != nil {
		return err
	}
	switch t := node.(type) {
	case ast.Name:
		env.Set(t.Ident, val)
		return nil

	case ast.Attribute:
		recv, err := m.Eval(t.X, env)
		if err != nil {
			return err
		}
		if inst, ok := recv.Foreign().(*Instance); ok && recv.Kind == value.Foreign {
			inst.Fields[t.Attr] = val
			return nil
		}
		return &errs.RuntimeError{Cause: fmt.Errorf("cannot assign attribute on non-instance value")}

	case ast.Subscript:
		name, ok := t.X.(ast.Name)
		if !ok {
			return &errs.RuntimeError{Cause: fmt.Errorf("unsupported assignment target")}
		}
		container, ok := env.Get(name.Ident)
		if !ok {
			return errs.NewUnknownName(name.Ident)
		}
		idx, err := m.Eval(t.Index, env)
		if err != nil {
			return err
		}
		switch container.Kind {
		case value.Map:
			env.Set(name.Ident, value.MapSet(container, idx, val))
		case value.List:
			items := append([]value.Value{}, container.Items()...)
			i, err := normalizeIndex(idx, len(items))
			if err != nil {
				return err
			}
			items[i] = val
			env.Set(name.Ident, value.ListValue(items))
		default:
			return &errs.RuntimeError{Cause: fmt.Errorf("'%s' object does not support item assignment", container.Kind)}
		}
		return nil
	}
	return &errs.RuntimeError{Cause: fmt.Errorf("unsupported assignment target")}
}

// makeFunction builds the Callable value for a `def`: for a generator body
// it spins up a goroutine-backed iterator on each call; for a plain
// function it runs the body synchronously, catching its return signal.
func (m *Machine) makeFunction(n *Node, defEnv *Env) value.Value {
	return value.CallableValue(n.Name, func(args []value.Value) (value.Value, error) {
		callEnv := NewEnv(defEnv)
		bindParams(n.Params, args, callEnv)
		if n.IsGen {
			return value.ForeignValue("generator", newGenerator(func(yield func(value.Value) bool) error {
				_, err := m.ExecBlock(n.Body, callEnv, yield)
				if rs, ok := err.(returnSignal); ok {
					_ = rs
					return nil
				}
				return err
			})), nil
		}
		v, err := m.ExecBlock(n.Body, callEnv, nil)
		if rs, ok := err.(returnSignal); ok {
			return rs.Value, nil
		}
		if err != nil {
			return value.Value{}, err
		}
		return v, nil
	})
}

func (m *Machine) invokeMethod(n *Node, inst *Instance, args []value.Value) (value.Value, error) {
	callEnv := NewEnv(inst.Class.Env)
	callEnv.Define("self", value.ForeignValue("instance:"+inst.Class.Name, inst))
	bindParams(n.Params, args, callEnv)
	v, err := m.ExecBlock(n.Body, callEnv, nil)
	if rs, ok := err.(returnSignal); ok {
		return rs.Value, nil
	}
	return v, err
}

func bindParams(params []string, args []value.Value, env *Env) {
	for i, p := range params {
		if p == "self" {
			continue
		}
		if i < len(args) {
			env.Define(p, args[i])
		} else {
			env.Define(p, value.NullValue())
		}
	}
}
