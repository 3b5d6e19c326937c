// Package exprparser is a recursive-descent parser for the canonical TALE
// expression grammar (spec §4.5). Because it can only construct the node
// kinds in internal/ast, a successful parse *is* the §4.5 validator: any
// input outside the allow-listed grammar fails here with a parse error.
package exprparser

import (
	"fmt"
	"strconv"

	"github.com/aledsdavies/tale/internal/ast"
	"github.com/aledsdavies/tale/internal/exprlexer"
)

// Parser consumes a token stream and builds an ast.Node tree.
type Parser struct {
	toks []exprlexer.Token
	pos  int
}

// Parse parses src as a single expression and returns its AST, or an error
// describing why the expression could not be understood.
func Parse(src string) (ast.Node, error) {
	lx := exprlexer.New(src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != exprlexer.EOF {
		return nil, fmt.Errorf("unexpected trailing input at %q", p.cur().Text)
	}
	return node, nil
}

func (p *Parser) cur() exprlexer.Token  { return p.toks[p.pos] }
func (p *Parser) peekType() exprlexer.TokenType { return p.cur().Type }

func (p *Parser) advance() exprlexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t exprlexer.TokenType) (exprlexer.Token, error) {
	if p.cur().Type != t {
		return exprlexer.Token{}, fmt.Errorf("expected %s, got %q", t, p.cur().Text)
	}
	return p.advance(), nil
}

// parseExpr is the grammar's entry point: lambda | conditional.
func (p *Parser) parseExpr() (ast.Node, error) {
	if p.peekType() == exprlexer.KW_LAMBDA {
		return p.parseLambda()
	}
	return p.parseCondExpr()
}

func (p *Parser) parseLambda() (ast.Node, error) {
	p.advance() // lambda
	var params []string
	for p.peekType() != exprlexer.COLON {
		if p.peekType() != exprlexer.IDENT {
			return nil, fmt.Errorf("expected lambda parameter, got %q", p.cur().Text)
		}
		params = append(params, p.advance().Text)
		if p.peekType() == exprlexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(exprlexer.COLON); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Lambda{Params: params, Body: body}, nil
}

func (p *Parser) parseCondExpr() (ast.Node, error) {
	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.KW_IF {
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprlexer.KW_ELSE); err != nil {
			return nil, err
		}
		orElse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.CondExpr{Body: body, Cond: cond, OrElse: orElse}, nil
	}
	return body, nil
}

func (p *Parser) parseOr() (ast.Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.peekType() != exprlexer.KW_OR {
		return first, nil
	}
	operands := []ast.Node{first}
	for p.peekType() == exprlexer.KW_OR {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return ast.BoolOp{Op: "or", Operands: operands}, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if p.peekType() != exprlexer.KW_AND {
		return first, nil
	}
	operands := []ast.Node{first}
	for p.peekType() == exprlexer.KW_AND {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	return ast.BoolOp{Op: "and", Operands: operands}, nil
}

func (p *Parser) parseNot() (ast.Node, error) {
	if p.peekType() == exprlexer.KW_NOT {
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: "not", X: x}, nil
	}
	return p.parseComparison()
}

var cmpOps = map[exprlexer.TokenType]string{
	exprlexer.EQ: "==", exprlexer.NE: "!=",
	exprlexer.LT: "<", exprlexer.LE: "<=",
	exprlexer.GT: ">", exprlexer.GE: ">=",
}

func (p *Parser) parseComparison() (ast.Node, error) {
	first, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []string
	var rest []ast.Node
	for {
		op, ok := cmpOps[p.peekType()]
		if !ok {
			break
		}
		p.advance()
		next, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		rest = append(rest, next)
	}
	if len(ops) == 0 {
		return first, nil
	}
	return ast.Compare{First: first, Ops: ops, Rest: rest}, nil
}

func (p *Parser) parseBitOr() (ast.Node, error) {
	x, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.peekType() == exprlexer.PIPE {
		p.advance()
		y, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		x = ast.BinOp{Op: "|", X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseBitAnd() (ast.Node, error) {
	x, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for p.peekType() == exprlexer.AMP {
		p.advance()
		y, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		x = ast.BinOp{Op: "&", X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseAddSub() (ast.Node, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peekType() == exprlexer.PLUS || p.peekType() == exprlexer.MINUS {
		op := "+"
		if p.peekType() == exprlexer.MINUS {
			op = "-"
		}
		p.advance()
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = ast.BinOp{Op: op, X: x, Y: y}
	}
	return x, nil
}

var termOps = map[exprlexer.TokenType]string{
	exprlexer.STAR: "*", exprlexer.SLASH: "/",
	exprlexer.SLASHSLASH: "//", exprlexer.PERCENT: "%",
}

func (p *Parser) parseTerm() (ast.Node, error) {
	x, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := termOps[p.peekType()]
		if !ok {
			break
		}
		p.advance()
		y, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		x = ast.BinOp{Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) parseFactor() (ast.Node, error) {
	if p.peekType() == exprlexer.MINUS || p.peekType() == exprlexer.PLUS {
		op := "-"
		if p.peekType() == exprlexer.PLUS {
			op = "+"
		}
		p.advance()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Op: op, X: x}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Node, error) {
	x, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.STARSTAR {
		p.advance()
		y, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return ast.BinOp{Op: "**", X: x, Y: y}, nil
	}
	return x, nil
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekType() {
		case exprlexer.DOT:
			p.advance()
			name, err := p.expect(exprlexer.IDENT)
			if err != nil {
				return nil, err
			}
			x = ast.Attribute{X: x, Attr: name.Text}
		case exprlexer.LPAREN:
			p.advance()
			var args []ast.Node
			for p.peekType() != exprlexer.RPAREN {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peekType() == exprlexer.COMMA {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(exprlexer.RPAREN); err != nil {
				return nil, err
			}
			x = ast.Call{Fn: x, Args: args}
		case exprlexer.LBRACKET:
			p.advance()
			idx, err := p.parseSubscript()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(exprlexer.RBRACKET); err != nil {
				return nil, err
			}
			x = ast.Subscript{X: x, Index: idx}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parseSubscript() (ast.Node, error) {
	var start, stop, step ast.Node
	hasSlice := false

	parsePart := func() (ast.Node, error) {
		if p.peekType() == exprlexer.COLON || p.peekType() == exprlexer.RBRACKET {
			return nil, nil
		}
		return p.parseExpr()
	}

	var err error
	start, err = parsePart()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.COLON {
		hasSlice = true
		p.advance()
		stop, err = parsePart()
		if err != nil {
			return nil, err
		}
		if p.peekType() == exprlexer.COLON {
			p.advance()
			step, err = parsePart()
			if err != nil {
				return nil, err
			}
		}
	}
	if hasSlice {
		return ast.Slice{Start: start, Stop: stop, Step: step}, nil
	}
	return start, nil
}

func (p *Parser) parseAtom() (ast.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case exprlexer.INT:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer literal %q", tok.Text)
		}
		return ast.IntLit{Value: n}, nil
	case exprlexer.FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal %q", tok.Text)
		}
		return ast.FloatLit{Value: f}, nil
	case exprlexer.STRING:
		p.advance()
		return ast.StrLit{Value: tok.Text}, nil
	case exprlexer.KW_TRUE:
		p.advance()
		return ast.BoolLit{Value: true}, nil
	case exprlexer.KW_FALSE:
		p.advance()
		return ast.BoolLit{Value: false}, nil
	case exprlexer.KW_NONE:
		p.advance()
		return ast.NoneLit{}, nil
	case exprlexer.IDENT:
		p.advance()
		return ast.Name{Ident: tok.Text}, nil
	case exprlexer.LPAREN:
		return p.parseParenOrTuple()
	case exprlexer.LBRACKET:
		return p.parseListOrComp()
	case exprlexer.LBRACE:
		return p.parseSetOrDict()
	default:
		return nil, fmt.Errorf("unexpected token %q", tok.Text)
	}
}

func (p *Parser) parseParenOrTuple() (ast.Node, error) {
	p.advance() // (
	if p.peekType() == exprlexer.RPAREN {
		p.advance()
		return ast.TupleLit{}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.KW_FOR {
		comp, err := p.parseCompTail(ast.GenExp, first, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprlexer.RPAREN); err != nil {
			return nil, err
		}
		return comp, nil
	}
	if p.peekType() != exprlexer.COMMA {
		if _, err := p.expect(exprlexer.RPAREN); err != nil {
			return nil, err
		}
		return first, nil
	}
	elts := []ast.Node{first}
	for p.peekType() == exprlexer.COMMA {
		p.advance()
		if p.peekType() == exprlexer.RPAREN {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	if _, err := p.expect(exprlexer.RPAREN); err != nil {
		return nil, err
	}
	return ast.TupleLit{Elts: elts}, nil
}

func (p *Parser) parseListOrComp() (ast.Node, error) {
	p.advance() // [
	if p.peekType() == exprlexer.RBRACKET {
		p.advance()
		return ast.ListLit{}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.KW_FOR {
		comp, err := p.parseCompTail(ast.ListComp, first, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprlexer.RBRACKET); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Node{first}
	for p.peekType() == exprlexer.COMMA {
		p.advance()
		if p.peekType() == exprlexer.RBRACKET {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	if _, err := p.expect(exprlexer.RBRACKET); err != nil {
		return nil, err
	}
	return ast.ListLit{Elts: elts}, nil
}

func (p *Parser) parseSetOrDict() (ast.Node, error) {
	p.advance() // {
	if p.peekType() == exprlexer.RBRACE {
		p.advance()
		return ast.DictLit{}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peekType() == exprlexer.COLON {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peekType() == exprlexer.KW_FOR {
			comp, err := p.parseCompTail(ast.DictComp, val, first)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(exprlexer.RBRACE); err != nil {
				return nil, err
			}
			return comp, nil
		}
		entries := []ast.DictEntry{{Key: first, Value: val}}
		for p.peekType() == exprlexer.COMMA {
			p.advance()
			if p.peekType() == exprlexer.RBRACE {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(exprlexer.COLON); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.DictEntry{Key: k, Value: v})
		}
		if _, err := p.expect(exprlexer.RBRACE); err != nil {
			return nil, err
		}
		return ast.DictLit{Entries: entries}, nil
	}
	if p.peekType() == exprlexer.KW_FOR {
		comp, err := p.parseCompTail(ast.SetComp, first, nil)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprlexer.RBRACE); err != nil {
			return nil, err
		}
		return comp, nil
	}
	elts := []ast.Node{first}
	for p.peekType() == exprlexer.COMMA {
		p.advance()
		if p.peekType() == exprlexer.RBRACE {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	if _, err := p.expect(exprlexer.RBRACE); err != nil {
		return nil, err
	}
	return ast.SetLit{Elts: elts}, nil
}

// parseCompTail parses one or more `for target in iter (if cond)*` clauses
// following an already-parsed element (and, for dict comprehensions, key).
func (p *Parser) parseCompTail(kind ast.CompKind, elt ast.Node, key ast.Node) (ast.Node, error) {
	var clauses []ast.CompClause
	for p.peekType() == exprlexer.KW_FOR {
		p.advance()
		target, err := p.expect(exprlexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(exprlexer.KW_IN); err != nil {
			return nil, err
		}
		iter, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		clause := ast.CompClause{Target: target.Text, Iter: iter}
		for p.peekType() == exprlexer.KW_IF {
			p.advance()
			cond, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		clauses = append(clauses, clause)
	}
	return ast.Comprehension{Kind: kind, Elt: elt, Key: key, Clauses: clauses}, nil
}
