// Package interp is the sandboxed executor (spec §4.6): it walks the
// translated program's statement tree, evaluating expressions through
// internal/exprparser and internal/value, with a restricted builtins table,
// a restricted import hook, and a deterministic input tape.
package interp

import (
	"regexp"
	"strings"

	"github.com/aledsdavies/tale/internal/translator"
)

// Kind distinguishes the compound statement forms the translator can emit
// from a plain (already target-language) simple statement.
type Kind int

const (
	KSimple Kind = iota
	KIf
	KWhile
	KFor
	KDef
	KClass
	KTry
	KWith
)

// IfBranch is one `if`/`elif` arm.
type IfBranch struct {
	Cond string
	Body Block
}

// Node is one parsed statement, compound or simple.
type Node struct {
	Kind Kind

	Text string // KSimple

	Branches []IfBranch // KIf
	Else     Block      // KIf

	Cond string // KWhile
	Body Block  // KWhile, KDef, KClass, KWith, KTry(try-body)

	Var  string // KFor
	Iter string // KFor

	Name   string   // KDef, KClass
	Params []string // KDef
	IsGen  bool     // KDef: body contains a yield

	WithExpr string // KWith
	WithVar  string // KWith

	ExceptName string // KTry
	ExceptBody Block  // KTry
	Finally    Block  // KTry
}

// Block is an ordered sequence of statements at one indent level.
type Block []*Node

var (
	reDef        = regexp.MustCompile(`^def\s+(\w+)\(([^)]*)\):$`)
	reClass      = regexp.MustCompile(`^class\s+(\w+):$`)
	reExceptAs   = regexp.MustCompile(`^except-as\s+(\w+):$`)
)

// Build turns a translator.Program's flat, indent-tagged statements into a
// nested Block, mirroring Python's own indentation-driven grammar.
func Build(prog translator.Program) Block {
	p := &builder{stmts: prog.Statements}
	return p.parseBlock(0)
}

type builder struct {
	stmts []translator.Statement
	pos   int
}

func (b *builder) peek() (translator.Statement, bool) {
	if b.pos >= len(b.stmts) {
		return translator.Statement{}, false
	}
	return b.stmts[b.pos], true
}

func (b *builder) parseBlock(indent int) Block {
	var out Block
	for {
		st, ok := b.peek()
		if !ok || st.Indent < indent {
			break
		}
		b.pos++
		out = append(out, b.parseStatement(st, indent))
	}
	return out
}

func (b *builder) parseStatement(st translator.Statement, indent int) *Node {
	text := st.Text

	switch {
	case strings.HasPrefix(text, "if ") && strings.HasSuffix(text, ":"):
		cond := strings.TrimSuffix(strings.TrimPrefix(text, "if "), ":")
		body := b.parseBlock(indent + 1)
		branches := []IfBranch{{Cond: cond, Body: body}}
		var elseBody Block
		for {
			nst, ok := b.peek()
			if !ok || nst.Indent != indent {
				break
			}
			if strings.HasPrefix(nst.Text, "elif ") && strings.HasSuffix(nst.Text, ":") {
				b.pos++
				c := strings.TrimSuffix(strings.TrimPrefix(nst.Text, "elif "), ":")
				branches = append(branches, IfBranch{Cond: c, Body: b.parseBlock(indent + 1)})
				continue
			}
			if nst.Text == "else:" {
				b.pos++
				elseBody = b.parseBlock(indent + 1)
			}
			break
		}
		return &Node{Kind: KIf, Branches: branches, Else: elseBody}

	case strings.HasPrefix(text, "while ") && strings.HasSuffix(text, ":"):
		cond := strings.TrimSuffix(strings.TrimPrefix(text, "while "), ":")
		return &Node{Kind: KWhile, Cond: cond, Body: b.parseBlock(indent + 1)}

	case strings.HasPrefix(text, "for ") && strings.HasSuffix(text, ":"):
		header := strings.TrimSuffix(strings.TrimPrefix(text, "for "), ":")
		idx := strings.Index(header, " in ")
		varName, iter := header, "[]"
		if idx >= 0 {
			varName = header[:idx]
			iter = header[idx+4:]
		}
		return &Node{Kind: KFor, Var: varName, Iter: iter, Body: b.parseBlock(indent + 1)}

	case strings.HasPrefix(text, "def "):
		m := reDef.FindStringSubmatch(text)
		var name string
		var params []string
		if m != nil {
			name = m[1]
			if strings.TrimSpace(m[2]) != "" {
				for _, p := range strings.Split(m[2], ",") {
					params = append(params, strings.TrimSpace(p))
				}
			}
		}
		body := b.parseBlock(indent + 1)
		return &Node{Kind: KDef, Name: name, Params: params, Body: body, IsGen: containsYield(body)}

	case strings.HasPrefix(text, "class "):
		m := reClass.FindStringSubmatch(text)
		name := ""
		if m != nil {
			name = m[1]
		}
		return &Node{Kind: KClass, Name: name, Body: b.parseBlock(indent + 1)}

	case text == "try:":
		body := b.parseBlock(indent + 1)
		var exceptName string
		var exceptBody Block
		var finallyBody Block
		for {
			nst, ok := b.peek()
			if !ok || nst.Indent != indent {
				break
			}
			if m := reExceptAs.FindStringSubmatch(nst.Text); m != nil {
				b.pos++
				exceptName = m[1]
				exceptBody = b.parseBlock(indent + 1)
				continue
			}
			if nst.Text == "finally:" {
				b.pos++
				finallyBody = b.parseBlock(indent + 1)
			}
			break
		}
		return &Node{Kind: KTry, Body: body, ExceptName: exceptName, ExceptBody: exceptBody, Finally: finallyBody}

	case strings.HasPrefix(text, "with ") && strings.HasSuffix(text, ":"):
		header := strings.TrimSuffix(strings.TrimPrefix(text, "with "), ":")
		idx := strings.LastIndex(header, " as ")
		expr, varName := header, "_"
		if idx >= 0 {
			expr = header[:idx]
			varName = header[idx+4:]
		}
		return &Node{Kind: KWith, WithExpr: expr, WithVar: varName, Body: b.parseBlock(indent + 1)}

	default:
		return &Node{Kind: KSimple, Text: text}
	}
}

func containsYield(body Block) bool {
	for _, n := range body {
		switch n.Kind {
		case KSimple:
			if strings.HasPrefix(n.Text, "yield") {
				return true
			}
		case KDef:
			continue // nested function's yields are its own
		default:
			if containsYield(n.Body) || containsYield(n.Else) || containsYield(n.ExceptBody) || containsYield(n.Finally) {
				return true
			}
			for _, br := range n.Branches {
				if containsYield(br.Body) {
					return true
				}
			}
		}
	}
	return false
}
