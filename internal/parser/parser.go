// Package parser implements the recursive-descent parser that turns a DSL
// token stream into a list of ast.FuncDef nodes.
//
// Precedence, loosest to tightest: let-expressions, if/then/else,
// comparisons, additive, multiplicative, unary prefix, postfix
// (index/field/transpose), primary. Each precedence level is one method,
// following the teacher's precedence-ladder convention.
package parser

import (
	"fmt"
	"strings"

	"github.com/b3d/mathc/internal/ast"
	"github.com/b3d/mathc/internal/cerrors"
	"github.com/b3d/mathc/internal/token"
)

// Option configures a Parser, in the functional-option style.
type Option func(*Parser)

// WithSource attaches the original source text so errors can render a
// source-line excerpt.
func WithSource(src string) Option {
	return func(p *Parser) { p.source = src }
}

// WithFile attaches a filename so errors can report "Error in <file>:...".
func WithFile(file string) Option {
	return func(p *Parser) { p.file = file }
}

// Parser holds parsing state over a fixed token slice.
type Parser struct {
	tokens []token.Token
	pos    int
	source string
	file   string
}

// New creates a Parser over tokens (expected to end with an EOF token, as
// produced by lexer.Lex).
func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) peek(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) advance() token.Token {
	tok := p.peek(0)
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, got %s (%q)", kind, tok.Kind, tok.Literal)
	}
	return tok, nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	msg = fmt.Sprintf("%s at line %d, col %d", msg, tok.Pos.Line, tok.Pos.Column)
	return cerrors.New(tok.Pos, msg, p.source, p.file)
}

func (p *Parser) skipNewlines() {
	for p.peek(0).Kind == token.NEWLINE {
		p.advance()
	}
}

// Parse consumes the full token stream, returning every function
// definition found. Leading junk before a recognizable function
// definition is skipped silently (spec §4.2); a malformed definition
// (missing bracket, wrong token in a critical position) is a fatal error.
func (p *Parser) Parse() ([]ast.FuncDef, error) {
	var funcs []ast.FuncDef
	for p.peek(0).Kind != token.EOF {
		p.skipNewlines()
		if p.peek(0).Kind == token.EOF {
			break
		}
		fn, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		if fn != nil {
			funcs = append(funcs, *fn)
		}
	}
	return funcs, nil
}

// parseFunc parses "name(params) = expr [where type-decls]". It returns a
// nil FuncDef (and nil error) when the current position isn't a function
// start, after skipping one token, matching spec §7's silent-recovery rule
// for leading junk.
func (p *Parser) parseFunc() (*ast.FuncDef, error) {
	p.skipNewlines()

	tok := p.peek(0)
	var name string
	switch tok.Kind {
	case token.IDENT:
		name = p.advance().Literal
	case token.THETA:
		p.advance()
		name = "a"
	default:
		p.advance()
		return nil, nil
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EQ); err != nil {
		return nil, err
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipNewlines()
	paramTypes := map[string]string{}
	if p.peek(0).Kind == token.WHERE {
		p.advance()
		p.skipNewlines()
		paramTypes, err = p.parseWhereBlock()
		if err != nil {
			return nil, err
		}
	}

	typedParams := make([]ast.Param, 0, len(params))
	for _, name := range params {
		t, ok := paramTypes[name]
		if !ok {
			t = "scalar"
		}
		typedParams = append(typedParams, ast.Param{Name: name, Type: t})
	}

	return &ast.FuncDef{
		Name:       name,
		Params:     typedParams,
		ReturnType: inferReturnType(body, paramTypes),
		Body:       body,
	}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	var params []string
	if p.peek(0).Kind == token.RPAREN {
		return params, nil
	}

	params = append(params, p.parseParamName())
	for p.peek(0).Kind == token.COMMA {
		p.advance()
		params = append(params, p.parseParamName())
	}
	return params, nil
}

func (p *Parser) parseParamName() string {
	tok := p.advance()
	if tok.Kind == token.THETA {
		return "a"
	}
	return tok.Literal
}

// parseWhereBlock parses "(name ∈ type)*" until it sees what looks like
// the next function definition, or a leading token that is neither an
// identifier nor θ. A failed "∈" lookahead rewinds one position, per
// spec §4.2's where-clause termination rule.
func (p *Parser) parseWhereBlock() (map[string]string, error) {
	types := map[string]string{}
	for {
		p.skipNewlines()
		tok := p.peek(0)

		if tok.Kind == token.IDENT && p.peek(1).Kind == token.LPAREN {
			break
		}

		var name string
		switch tok.Kind {
		case token.IDENT:
			name = p.advance().Literal
		case token.THETA:
			p.advance()
			name = "a"
		default:
			return types, nil
		}

		if p.peek(0).Kind != token.IN {
			if p.pos > 0 {
				p.pos--
			}
			return types, nil
		}
		p.advance() // consume ∈

		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types[name] = typ
	}
	return types, nil
}

func (p *Parser) parseType() (string, error) {
	var base string
	switch p.peek(0).Kind {
	case token.REAL:
		p.advance()
		base = "ℝ"
	case token.INT:
		p.advance()
		base = "ℤ"
	default:
		return "scalar", nil
	}

	if p.peek(0).Kind == token.SUPERSCRIPT {
		base += p.advance().Literal
	}
	return base, nil
}

// inferReturnType walks the body shape to decide the function's C result
// type tag, per spec §4.2.
func inferReturnType(body ast.Expr, types map[string]string) string {
	switch b := body.(type) {
	case ast.Matrix:
		return "mat4"
	case ast.Vector:
		return "vec4"
	case ast.Comprehension:
		return "vec4"
	case ast.Sum:
		return "scalar"
	case ast.Norm:
		return "scalar"
	case ast.If:
		thenType := inferReturnType(b.Then, types)
		if thenType != "scalar" {
			return thenType
		}
		return inferReturnType(b.Else, types)
	case ast.Let:
		return inferReturnType(b.Body, types)
	case ast.Variable:
		switch types[b.Name] {
		case "ℝ4", "ℝ3":
			return "vec4"
		case "ℝ4x4":
			return "mat4"
		}
		return "scalar"
	case ast.Call:
		switch b.Func {
		case "vec_dot", "vec_length", "vec_length_sq":
			return "scalar"
		}
		if strings.HasPrefix(b.Func, "mat_") {
			if strings.Contains(b.Func, "vec") {
				return "vec4"
			}
			return "mat4"
		}
		if strings.HasPrefix(b.Func, "vec_") {
			return "vec4"
		}
		return "scalar"
	default:
		return "scalar"
	}
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	p.skipNewlines()
	return p.parseLet()
}

func (p *Parser) parseLet() (ast.Expr, error) {
	p.skipNewlines()
	if p.peek(0).Kind != token.LET {
		return p.parseConditional()
	}
	p.advance()

	var bindings []ast.Binding
	b, err := p.parseBinding()
	if err != nil {
		return nil, err
	}
	bindings = append(bindings, b)

	for p.peek(0).Kind == token.SEMICOLON {
		p.advance()
		p.skipNewlines()
		if p.peek(0).Kind == token.LET {
			p.advance()
		}
		b, err := p.parseBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if p.peek(0).Kind == token.LETIN {
		p.advance()
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return ast.Let{Bindings: bindings, Body: body}, nil
}

func (p *Parser) parseBinding() (ast.Binding, error) {
	name := p.advance().Literal
	if _, err := p.expect(token.EQ); err != nil {
		return ast.Binding{}, err
	}
	value, err := p.parseConditional()
	if err != nil {
		return ast.Binding{}, err
	}
	return ast.Binding{Name: name, Value: value}, nil
}

func (p *Parser) parseConditional() (ast.Expr, error) {
	if p.peek(0).Kind != token.IF {
		return p.parseComparison()
	}
	p.advance()

	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseLet()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseLet()
	if err != nil {
		return nil, err
	}
	return ast.If{Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek(0).Kind == token.LT || p.peek(0).Kind == token.GT ||
		p.peek(0).Kind == token.LE || p.peek(0).Kind == token.GE {
		op := p.advance().Literal
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek(0).Kind == token.PLUS || p.peek(0).Kind == token.MINUS {
		op := p.advance().Literal
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// isFieldAccessDot reports whether tok is the ASCII "." spelling of a DOT
// token, as opposed to the dot-product spellings ("·", "⋅", "\cdot",
// "\dot") that share the same token kind. Only the ASCII spelling can ever
// introduce field access; the others are always the multiplicative
// dot-product operator, even when immediately followed by a bare
// identifier (e.g. "a · b", "v_i · w_i").
func isFieldAccessDot(tok token.Token) bool {
	return tok.Kind == token.DOT && tok.Literal == "."
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		k := p.peek(0).Kind
		if k != token.STAR && k != token.SLASH && k != token.DOT && k != token.CROSS {
			break
		}
		if k == token.DOT && isFieldAccessDot(p.peek(0)) && p.peek(1).Kind == token.IDENT {
			// ASCII "." is field access, not dot-product; leave for the postfix layer.
			break
		}
		opTok := p.advance()
		op := opTok.Literal
		switch opTok.Kind {
		case token.DOT:
			op = "dot"
		case token.CROSS:
			op = "cross"
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.BinOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.peek(0).Kind == token.MINUS {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: "-", Operand: operand}, nil
	}

	if p.peek(0).Kind == token.SQRT {
		p.advance()
		var operand ast.Expr
		var err error
		if p.peek(0).Kind == token.LPAREN {
			p.advance()
			operand, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		} else {
			operand, err = p.parsePrimary()
			if err != nil {
				return nil, err
			}
		}
		return ast.Call{Func: "sqrt", Args: []ast.Expr{operand}}, nil
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.peek(0).Kind == token.LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			if p.peek(0).Kind == token.LBRACKET {
				p.advance()
				idx2, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.RBRACKET); err != nil {
					return nil, err
				}
				left = ast.MatrixIndex{Base: left, Row: idx, Col: idx2}
			} else {
				left = ast.Index{Base: left, Index: idx}
			}

		case isFieldAccessDot(p.peek(0)) && p.peek(1).Kind == token.IDENT:
			p.advance()
			field := p.advance().Literal
			left = ast.DotAccess{Base: left, Field: field}

		case p.peek(0).Kind == token.TRANSPOSE:
			p.advance()
			left = ast.Unary{Op: "T", Operand: left}

		default:
			return left, nil
		}
	}
}

var builtinFuncKinds = map[token.Kind]bool{
	token.SIN: true, token.COS: true, token.TAN: true, token.ABS: true,
	token.FLOOR: true, token.MIN: true, token.MAX: true, token.CLAMP: true,
}

var validSubscriptIndices = map[string]bool{
	"i": true, "j": true, "k": true, "l": true, "m": true,
	"0": true, "1": true, "2": true, "3": true, "4": true,
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek(0)

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return ast.Number{Literal: tok.Literal}, nil

	case token.SUM:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		varName := p.advance().Literal
		if _, err := p.expect(token.IN); err != nil {
			return nil, err
		}
		rng, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		return ast.Sum{Var: varName, Range: rng, Body: body}, nil

	case token.NORM:
		p.advance()
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.NORM); err != nil {
			return nil, err
		}
		return ast.Norm{Operand: operand}, nil

	case token.PIPE:
		p.advance()
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.PIPE); err != nil {
			return nil, err
		}
		return ast.Call{Func: "abs", Args: []ast.Expr{operand}}, nil

	case token.LBRACKET:
		return p.parseVectorOrMatrix()

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case token.PI:
		p.advance()
		return ast.Variable{Name: "PI"}, nil

	case token.EPSILON:
		p.advance()
		return ast.Variable{Name: "EPSILON"}, nil

	case token.THETA:
		p.advance()
		return ast.Variable{Name: "a"}, nil

	case token.DELTA:
		p.advance()
		if p.peek(0).Kind == token.SUBSCRIPT {
			i := p.advance().Literal
			if p.peek(0).Kind == token.SUBSCRIPT {
				j := p.advance().Literal
				return ast.Call{Func: "kronecker", Args: []ast.Expr{
					ast.Variable{Name: i}, ast.Variable{Name: j},
				}}, nil
			}
		}
		return ast.Variable{Name: "delta"}, nil

	case token.IDENT:
		name := p.advance().Literal
		if p.peek(0).Kind == token.LPAREN {
			p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return ast.Call{Func: name, Args: args}, nil
		}
		if idx := subscriptVariable(name); idx != nil {
			return idx, nil
		}
		return ast.Variable{Name: name}, nil

	default:
		if builtinFuncKinds[tok.Kind] {
			fn := strings.ToLower(p.advance().Literal)
			var args []ast.Expr
			var err error
			if p.peek(0).Kind == token.LPAREN {
				p.advance()
				args, err = p.parseArgList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.RPAREN); err != nil {
					return nil, err
				}
			} else {
				arg, err := p.parseUnary()
				if err != nil {
					return nil, err
				}
				args = []ast.Expr{arg}
			}
			return ast.Call{Func: fn, Args: args}, nil
		}

		// Unknown primary: skip one token, poison the tree, let parsing
		// continue so downstream errors can surface too (spec §7 item 3).
		p.advance()
		return ast.Variable{Name: "_unknown_"}, nil
	}
}

// subscriptVariable rewrites identifiers like "a_i" or "M_0" into nested
// Index nodes, but only when the base is a single character and every
// suffix is a recognized loop index — this avoids misfiring on names like
// "vec_dot" or "up_n" (spec §4.2).
func subscriptVariable(name string) ast.Expr {
	if !strings.Contains(name, "_") {
		return nil
	}
	parts := strings.Split(name, "_")
	if len([]rune(parts[0])) != 1 {
		return nil
	}
	for _, suffix := range parts[1:] {
		if !validSubscriptIndices[suffix] {
			return nil
		}
	}

	var base ast.Expr = ast.Variable{Name: parts[0]}
	for _, idx := range parts[1:] {
		base = ast.Index{Base: base, Index: ast.Variable{Name: idx}}
	}
	return base
}

func (p *Parser) parseRange() (string, error) {
	var sb strings.Builder
	sb.WriteString(p.advance().Literal)

	if p.peek(0).Kind == token.IDENT && p.peek(0).Literal == ".." {
		p.advance()
		sb.WriteString("..")
		sb.WriteString(p.advance().Literal)
	}
	return sb.String(), nil
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.peek(0).Kind == token.RPAREN {
		return args, nil
	}

	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args = append(args, arg)

	for p.peek(0).Kind == token.COMMA {
		p.advance()
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (p *Parser) parseVectorOrMatrix() (ast.Expr, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}

	if p.peek(0).Kind == token.LBRACKET {
		var rows [][]ast.Expr
		for p.peek(0).Kind == token.LBRACKET {
			p.advance()
			var row []ast.Expr
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			for p.peek(0).Kind == token.COMMA {
				p.advance()
				if p.peek(0).Kind == token.RBRACKET {
					break
				}
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				row = append(row, e)
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			rows = append(rows, row)
			if p.peek(0).Kind == token.COMMA {
				p.advance()
			}
			if p.peek(0).Kind == token.RBRACKET {
				break
			}
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return ast.Matrix{Rows: rows}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek(0).Kind == token.PIPE {
		p.advance()
		varName := p.advance().Literal
		if _, err := p.expect(token.IN); err != nil {
			return nil, err
		}
		rng, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return ast.Comprehension{Body: first, Var: varName, Range: rng}, nil
	}

	elements := []ast.Expr{first}
	for p.peek(0).Kind == token.COMMA {
		p.advance()
		if p.peek(0).Kind == token.RBRACKET {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}

	if _, ok := first.(ast.Vector); ok {
		rows := make([][]ast.Expr, 0, len(elements))
		for _, e := range elements {
			if v, ok := e.(ast.Vector); ok {
				rows = append(rows, v.Elements)
			} else {
				rows = append(rows, []ast.Expr{e})
			}
		}
		return ast.Matrix{Rows: rows}, nil
	}

	return ast.Vector{Elements: elements}, nil
}
