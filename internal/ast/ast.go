// Package ast defines the typed expression tree produced by the parser and
// consumed by the code generator.
//
// Each grammar production gets its own Go type implementing the Expr
// marker interface — the idiomatic substitute for the original Python
// implementation's dataclass-per-node plus isinstance dispatch. Stages
// downstream type-switch over Expr rather than testing a variant tag.
package ast

// Expr is implemented by every expression node. It carries no behavior of
// its own; it exists so the parser and generator can pass a single typed
// value around and recover the concrete node with a type switch.
type Expr interface {
	exprNode()
}

// Number is a numeric literal, carrying its original source spelling
// (decimal digits with an optional single fractional part).
type Number struct {
	Literal string
}

// Variable is a bare identifier reference.
type Variable struct {
	Name string
}

// BinOp is a binary operation. Op is one of "+", "-", "*", "/", "dot",
// "cross", "<", ">", "<=", ">=".
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix unary operation. Op is "-" (negation) or "T"
// (transpose, written postfix in source but normalized to a Unary node).
type Unary struct {
	Op      string
	Operand Expr
}

// Call is a function invocation, either a DSL builtin (sin, cos, tan, abs,
// floor, min, max, clamp, kronecker, sqrt) or a user-defined function.
type Call struct {
	Func string
	Args []Expr
}

// Index is single-argument subscripting: base[idx].
type Index struct {
	Base  Expr
	Index Expr
}

// MatrixIndex is double-argument subscripting: base[row][col].
type MatrixIndex struct {
	Base Expr
	Row  Expr
	Col  Expr
}

// DotAccess is textual field access: base.field.
type DotAccess struct {
	Base  Expr
	Field string
}

// Sum is ∑(var ∈ range) body, statically expanded by the generator.
type Sum struct {
	Var   string
	Range string
	Body  Expr
}

// Norm is ‖operand‖ (Euclidean length).
type Norm struct {
	Operand Expr
}

// Vector is a bracketed element list: [e0, e1, ...].
type Vector struct {
	Elements []Expr
}

// Comprehension is [body | var ∈ range], statically expanded by the
// generator into a vector literal.
type Comprehension struct {
	Body  Expr
	Var   string
	Range string
}

// Matrix is a bracketed list of rows, each a list of element expressions.
type Matrix struct {
	Rows [][]Expr
}

// Let is an ordered list of (name, value) bindings followed by a body
// expression. Binding order is significant: later bindings may reference
// earlier ones, mirroring emitted C declaration order.
type Let struct {
	Bindings []Binding
	Body     Expr
}

// Binding is one name = value pair inside a Let.
type Binding struct {
	Name  string
	Value Expr
}

// If is a conditional expression: cond ? then : else in spirit, though the
// generator may lower it to a block-structured if/else when either branch
// contains a Let.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (Number) exprNode()        {}
func (Variable) exprNode()      {}
func (BinOp) exprNode()         {}
func (Unary) exprNode()         {}
func (Call) exprNode()          {}
func (Index) exprNode()         {}
func (MatrixIndex) exprNode()   {}
func (DotAccess) exprNode()     {}
func (Sum) exprNode()           {}
func (Norm) exprNode()          {}
func (Vector) exprNode()        {}
func (Comprehension) exprNode() {}
func (Matrix) exprNode()        {}
func (Let) exprNode()           {}
func (If) exprNode()            {}

// Param is one function parameter: its name and a textual type tag
// ("scalar", "ℝ", "ℝ3", "ℝ4", "ℝ4x4", "ℤ", or whatever the type parser
// emitted — superscript dimensions are rewritten to plain ASCII digits by
// the lexer). Types are kept as plain strings rather than a closed enum
// so the generator can recognize dimensions it doesn't yet have a case
// for without a parser change.
type Param struct {
	Name string
	Type string
}

// FuncDef is one compiled DSL function: its name, ordered parameters, the
// return type inferred from its body shape, and the body expression.
type FuncDef struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       Expr
}
