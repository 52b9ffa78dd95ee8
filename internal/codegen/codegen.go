// Package codegen lowers a parsed FuncDef into ANSI C source text, in
// either floating-point or fixed-point arithmetic mode.
//
// Each FuncDef is walked once per call to Generate. Sums and
// comprehensions are expanded statically: the body is rendered once as a
// text template with the loop variable left as a bare name, then that
// template is textually substituted and cleaned up for each concrete
// index, per the rules in spec §4.3.
package codegen

import (
	"fmt"
	"strings"

	"github.com/b3d/mathc/internal/ast"
)

// Mode selects the arithmetic lowering target.
type Mode int

const (
	ModeFloat Mode = iota
	ModeFixed
)

func (m Mode) String() string {
	if m == ModeFixed {
		return "fixed-point"
	}
	return "floating-point"
}

// ParseMode parses a --mode flag value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "float", "":
		return ModeFloat, nil
	case "fixed":
		return ModeFixed, nil
	default:
		return ModeFloat, fmt.Errorf("unknown mode %q (want float or fixed)", s)
	}
}

// Generator lowers FuncDefs to C text for one (mode, suffix) pair.
type Generator struct {
	mode   Mode
	suffix string
}

// New creates a Generator for the given mode and function-name suffix.
func New(mode Mode, suffix string) *Generator {
	return &Generator{mode: mode, suffix: suffix}
}

// emitCtx threads per-call rendering state (currently just the integer-
// literal-context flag) through the recursive render functions, replacing
// the teacher-language original's global mutable emit_int_context flag
// with an explicit, per-call value (spec §9's design note on this point).
type emitCtx struct {
	intContext bool
}

// Generate renders fn as a complete static-inline C function definition.
func (g *Generator) Generate(fn ast.FuncDef) (string, error) {
	ctx := &emitCtx{}

	paramStrs := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		paramStrs = append(paramStrs, fmt.Sprintf("%s %s", cTypeForTag(p.Type), p.Name))
	}

	lines, err := g.genBody(fn.Body, ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "static inline %s b3d_%s%s(%s) {\n",
		cTypeForTag(fn.ReturnType), fn.Name, g.suffix, strings.Join(paramStrs, ", "))
	for _, line := range lines {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// HeaderComment renders the required leading comment block identifying
// the generation mode (spec §8's "begins with /* Auto-generated..."
// invariant).
func HeaderComment(mode Mode) string {
	return fmt.Sprintf("/* Auto-generated from math.dsl — do not edit by hand.\n * Mode: %s\n */\n\n", mode)
}

// needsBlockForm reports whether e requires if/else block-structured C
// rather than a single return with a ternary, per spec §4.3's body-
// shaping rule: block form is required as soon as any conditional branch
// (however deeply nested inside lets or further conditionals) is itself
// a let-expression.
func needsBlockForm(e ast.Expr) bool {
	switch b := e.(type) {
	case ast.Let:
		return needsBlockForm(b.Body)
	case ast.If:
		if isLet(b.Then) || isLet(b.Else) {
			return true
		}
		return needsBlockForm(b.Then) || needsBlockForm(b.Else)
	default:
		return false
	}
}

func isLet(e ast.Expr) bool {
	_, ok := e.(ast.Let)
	return ok
}

// genBody renders e as a sequence of C statement lines (undeclared
// indentation — the caller indents each line uniformly, and genBody adds
// one further indent level per nested if/else block).
func (g *Generator) genBody(e ast.Expr, ctx *emitCtx) ([]string, error) {
	switch b := e.(type) {
	case ast.Let:
		var lines []string
		cur := ast.Expr(b)
		for {
			let, ok := cur.(ast.Let)
			if !ok {
				break
			}
			for _, binding := range let.Bindings {
				val, err := g.render(binding.Value, ctx)
				if err != nil {
					return nil, err
				}
				lines = append(lines, fmt.Sprintf("%s %s = %s;", g.inferCType(binding.Value), binding.Name, val))
			}
			cur = let.Body
		}
		rest, err := g.genBody(cur, ctx)
		if err != nil {
			return nil, err
		}
		return append(lines, rest...), nil

	case ast.If:
		if needsBlockForm(b) {
			cond, err := g.render(b.Cond, ctx)
			if err != nil {
				return nil, err
			}
			thenLines, err := g.genBody(b.Then, ctx)
			if err != nil {
				return nil, err
			}
			elseLines, err := g.genBody(b.Else, ctx)
			if err != nil {
				return nil, err
			}

			lines := []string{fmt.Sprintf("if (%s) {", cond)}
			for _, l := range thenLines {
				lines = append(lines, "    "+l)
			}
			lines = append(lines, "} else {")
			for _, l := range elseLines {
				lines = append(lines, "    "+l)
			}
			lines = append(lines, "}")
			return lines, nil
		}

		ternary, err := g.renderTernary(b, ctx)
		if err != nil {
			return nil, err
		}
		return []string{"return " + ternary + ";"}, nil

	default:
		text, err := g.render(e, ctx)
		if err != nil {
			return nil, err
		}
		return []string{"return " + text + ";"}, nil
	}
}

// renderTernary lowers an If to a C conditional expression, recursing
// through an else-branch (or then-branch) that is itself an If so
// "if a then x else if b then y else z" becomes one nested ternary
// (spec §8 scenario 4).
func (g *Generator) renderTernary(ifExpr ast.If, ctx *emitCtx) (string, error) {
	cond, err := g.render(ifExpr.Cond, ctx)
	if err != nil {
		return "", err
	}
	thenText, err := g.renderTernaryBranch(ifExpr.Then, ctx)
	if err != nil {
		return "", err
	}
	elseText, err := g.renderTernaryBranch(ifExpr.Else, ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s ? %s : %s)", cond, thenText, elseText), nil
}

func (g *Generator) renderTernaryBranch(e ast.Expr, ctx *emitCtx) (string, error) {
	if nested, ok := e.(ast.If); ok {
		return g.renderTernary(nested, ctx)
	}
	return g.render(e, ctx)
}

// render lowers a single expression to its C text, recursively.
func (g *Generator) render(e ast.Expr, ctx *emitCtx) (string, error) {
	switch v := e.(type) {
	case ast.Number:
		return renderNumber(v.Literal, ctx.intContext), nil

	case ast.Variable:
		return g.renderVariable(v.Name), nil

	case ast.BinOp:
		return g.renderBinOp(v, ctx)

	case ast.Unary:
		return g.renderUnary(v, ctx)

	case ast.Call:
		return g.renderCall(v, ctx)

	case ast.Index:
		return g.renderIndex(v, ctx)

	case ast.MatrixIndex:
		return g.renderMatrixIndex(v, ctx)

	case ast.DotAccess:
		base, err := g.render(v.Base, ctx)
		if err != nil {
			return "", err
		}
		return base + "." + v.Field, nil

	case ast.Sum:
		return g.renderSum(v, ctx)

	case ast.Norm:
		operand, err := g.render(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("b3d_vec_length%s(%s)", g.suffix, operand), nil

	case ast.Vector:
		elems := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			s, err := g.render(el, ctx)
			if err != nil {
				return "", err
			}
			elems[i] = s
		}
		return fmt.Sprintf("(b3d_vec_t){%s}", strings.Join(elems, ", ")), nil

	case ast.Comprehension:
		return g.renderComprehension(v, ctx)

	case ast.Matrix:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				s, err := g.render(cell, ctx)
				if err != nil {
					return "", err
				}
				cells[j] = s
			}
			rows[i] = "{" + strings.Join(cells, ", ") + "}"
		}
		return fmt.Sprintf("(b3d_mat_t){.m = { %s }}", strings.Join(rows, ", ")), nil

	case ast.If:
		return g.renderTernary(v, ctx)

	case ast.Let:
		return "", fmt.Errorf("let-expression not valid outside a function body or conditional branch")

	default:
		return "", fmt.Errorf("codegen: unhandled expression type %T", e)
	}
}

// isScalarShaped reports whether e denotes a single numeric component
// rather than a whole vector/matrix — used to decide whether a "dot"
// BinOp (the "·" operator) should lower to a scalar multiply or to
// b3d_vec_dot: a "dot" with at least one scalar-shaped operand becomes a
// multiply.
func isScalarShaped(e ast.Expr) bool {
	switch e.(type) {
	case ast.Number, ast.Index, ast.MatrixIndex, ast.DotAccess:
		return true
	default:
		return false
	}
}

func (g *Generator) renderBinOp(b ast.BinOp, ctx *emitCtx) (string, error) {
	left, err := g.render(b.Left, ctx)
	if err != nil {
		return "", err
	}
	right, err := g.render(b.Right, ctx)
	if err != nil {
		return "", err
	}

	switch b.Op {
	case "dot":
		if isScalarShaped(b.Left) || isScalarShaped(b.Right) {
			return g.lowerArith("*", left, right), nil
		}
		return fmt.Sprintf("b3d_vec_dot%s(%s, %s)", g.suffix, left, right), nil

	case "cross":
		return fmt.Sprintf("b3d_vec_cross%s(%s, %s)", g.suffix, left, right), nil

	case "+", "-", "*", "/":
		return g.lowerArith(b.Op, left, right), nil

	case "<", ">", "<=", ">=":
		return fmt.Sprintf("(%s %s %s)", left, b.Op, right), nil

	default:
		return "", fmt.Errorf("codegen: unknown binary operator %q", b.Op)
	}
}

var fixedArithMacro = map[string]string{
	"+": "B3D_FP_ADD",
	"-": "B3D_FP_SUB",
	"*": "B3D_FP_MUL",
	"/": "B3D_FP_DIV",
}

func (g *Generator) lowerArith(op, left, right string) string {
	if g.mode == ModeFixed {
		return fmt.Sprintf("%s(%s, %s)", fixedArithMacro[op], left, right)
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right)
}

func (g *Generator) renderUnary(u ast.Unary, ctx *emitCtx) (string, error) {
	operand, err := g.render(u.Operand, ctx)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case "-":
		return fmt.Sprintf("-(%s)", operand), nil
	case "T":
		return fmt.Sprintf("b3d_mat_transpose%s(%s)", g.suffix, operand), nil
	default:
		return "", fmt.Errorf("codegen: unknown unary operator %q", u.Op)
	}
}

func (g *Generator) renderIndex(idx ast.Index, ctx *emitCtx) (string, error) {
	base, err := g.render(idx.Base, ctx)
	if err != nil {
		return "", err
	}

	if num, ok := idx.Index.(ast.Number); ok {
		if comp := componentForDigit(num.Literal); comp != "" {
			return base + "." + comp, nil
		}
	}
	if v, ok := idx.Index.(ast.Variable); ok {
		if comp := componentLetter(v.Name); comp != "" {
			return base + "." + comp, nil
		}
	}

	idxText, err := g.render(idx.Index, ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s[%s]", base, idxText), nil
}

func (g *Generator) renderMatrixIndex(mi ast.MatrixIndex, ctx *emitCtx) (string, error) {
	base, err := g.render(mi.Base, ctx)
	if err != nil {
		return "", err
	}
	row, err := g.renderIntExpr(mi.Row, ctx)
	if err != nil {
		return "", err
	}
	col, err := g.renderIntExpr(mi.Col, ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.m[%s][%s]", base, row, col), nil
}

// renderIntExpr renders e the way a matrix-index position requires:
// a literal Number loses its float formatting, everything else renders
// normally.
func (g *Generator) renderIntExpr(e ast.Expr, ctx *emitCtx) (string, error) {
	if num, ok := e.(ast.Number); ok {
		return renderNumber(num.Literal, true), nil
	}
	return g.render(e, ctx)
}

var builtinCallNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sqrt": true, "abs": true,
	"floor": true, "min": true, "max": true, "clamp": true, "kronecker": true,
}

func (g *Generator) renderCall(c ast.Call, ctx *emitCtx) (string, error) {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		saved := ctx.intContext
		ctx.intContext = isIntArg(c.Func, i)
		s, err := g.render(a, ctx)
		ctx.intContext = saved
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	switch c.Func {
	case "sin":
		return fmt.Sprintf("b3d_sinf(%s)", args[0]), nil
	case "cos":
		return fmt.Sprintf("b3d_cosf(%s)", args[0]), nil
	case "tan":
		return fmt.Sprintf("b3d_tanf(%s)", args[0]), nil
	case "sqrt":
		return fmt.Sprintf("b3d_sqrtf(%s)", args[0]), nil
	case "abs":
		return fmt.Sprintf("b3d_fabsf(%s)", args[0]), nil
	case "floor":
		return fmt.Sprintf("floorf(%s)", args[0]), nil
	case "min":
		return fmt.Sprintf("fminf(%s, %s)", args[0], args[1]), nil
	case "max":
		return fmt.Sprintf("fmaxf(%s, %s)", args[0], args[1]), nil
	case "clamp":
		return fmt.Sprintf("fminf(fmaxf(%s, %s), %s)", args[0], args[1], args[2]), nil
	case "kronecker":
		return fmt.Sprintf("((%s) == (%s) ? 1.0f : 0.0f)", args[0], args[1]), nil
	default:
		return fmt.Sprintf("b3d_%s%s(%s)", c.Func, g.suffix, strings.Join(args, ", ")), nil
	}
}

func (g *Generator) renderSum(s ast.Sum, ctx *emitCtx) (string, error) {
	template, err := g.render(s.Body, ctx)
	if err != nil {
		return "", err
	}
	indices := rangeIndices(s.Range)
	terms := make([]string, len(indices))
	for i, idx := range indices {
		terms[i] = substituteIndex(template, s.Var, idx)
	}
	return g.joinSumTerms(terms), nil
}

// joinSumTerms combines a sum's expanded terms left to right. Float mode
// joins with a bare " + " (spec §8 scenario 1's expected text has no
// enclosing parens around the whole addition chain); fixed mode folds
// through nested B3D_FP_ADD calls, since fixed-point addition is a macro
// rather than an operator and each step must be an explicit call (spec §8
// scenario 6).
func (g *Generator) joinSumTerms(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		if g.mode == ModeFixed {
			acc = fmt.Sprintf("B3D_FP_ADD(%s, %s)", acc, t)
		} else {
			acc = acc + " + " + t
		}
	}
	return acc
}

func (g *Generator) renderComprehension(c ast.Comprehension, ctx *emitCtx) (string, error) {
	template, err := g.render(c.Body, ctx)
	if err != nil {
		return "", err
	}
	indices := rangeIndices(c.Range)
	elems := make([]string, len(indices))
	for i, idx := range indices {
		elems[i] = substituteIndex(template, c.Var, idx)
	}
	return fmt.Sprintf("(b3d_vec_t){%s}", strings.Join(elems, ", ")), nil
}

// inferCType infers the C type of a let-binding's value expression, for
// its declaration line. Mirrors the parser's return-type inference
// (spec §4.2) but resolved directly to a C type rather than a tag, since
// a let-binding has no parameter-type table to consult for Variable
// lookups — only literal-shaped expressions (Vector, Matrix, Sum, Norm,
// Call) carry enough information here, which covers every binding shape
// spec §8's worked scenarios actually use.
func (g *Generator) inferCType(e ast.Expr) string {
	switch b := e.(type) {
	case ast.Matrix:
		return "b3d_mat_t"
	case ast.Vector, ast.Comprehension:
		return "b3d_vec_t"
	case ast.Sum, ast.Norm:
		return "float"
	case ast.If:
		thenType := g.inferCType(b.Then)
		if thenType != "float" {
			return thenType
		}
		return g.inferCType(b.Else)
	case ast.Let:
		return g.inferCType(b.Body)
	case ast.Call:
		switch b.Func {
		case "vec_dot", "vec_length", "vec_length_sq":
			return "float"
		}
		if strings.HasPrefix(b.Func, "mat_") {
			if strings.Contains(b.Func, "vec") {
				return "b3d_vec_t"
			}
			return "b3d_mat_t"
		}
		if strings.HasPrefix(b.Func, "vec_") {
			return "b3d_vec_t"
		}
		return "float"
	default:
		return "float"
	}
}
