// Package token defines the tokens produced by the lexer when scanning a
// math-DSL source file.
package token

import "fmt"

// Kind identifies the lexical category of a Token. Kinds are grouped below
// by family (literals, operators, structural, keywords, constants, types,
// sub/superscripts) in the same order they are documented in the DSL spec.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// literals
	IDENT
	NUMBER

	literalEnd

	// operator symbols
	PLUS     // +
	MINUS    // -
	STAR     // *
	SLASH    // /
	DOT      // . or · ⋅ (dot-product / field access, disambiguated by parser)
	CROSS    // × or \times \cross
	NORM     // ‖ or || (open/close disambiguated by parser)
	PIPE     // |  (absolute value delimiter)
	SQRT     // √ or \sqrt
	SUM      // ∑ or \sum
	IN       // ∈ or \in
	TRANSPOSE // ᵀ or \T \transpose
	EQ       // =
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=

	operatorEnd

	// structural
	LPAREN    // (
	RPAREN    // )
	LBRACKET  // [
	RBRACKET  // ]
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	NEWLINE   // significant only at bracket/paren depth zero

	structuralEnd

	// keywords
	WHERE
	LET
	LETIN // the `in` keyword inside a let-expression (distinct from IN = ∈)
	IF
	THEN
	ELSE
	SIN
	COS
	TAN
	ABS
	FLOOR
	MIN
	MAX
	CLAMP

	keywordEnd

	// math constants
	THETA   // θ
	PI      // π
	EPSILON // ε
	DELTA   // δ

	constantEnd

	// type symbols
	REAL // ℝ
	INT  // ℤ

	typeEnd

	// positional sub/superscripts
	SUBSCRIPT   // single rewritten ASCII index, e.g. "i", "0"
	SUPERSCRIPT // one or more rewritten ASCII dimension digits, e.g. "4", "4x4"
)

var kindNames = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",

	PLUS:      "PLUS",
	MINUS:     "MINUS",
	STAR:      "STAR",
	SLASH:     "SLASH",
	DOT:       "DOT",
	CROSS:     "CROSS",
	NORM:      "NORM",
	PIPE:      "PIPE",
	SQRT:      "SQRT",
	SUM:       "SUM",
	IN:        "IN",
	TRANSPOSE: "TRANSPOSE",
	EQ:        "EQ",
	LT:        "LT",
	GT:        "GT",
	LE:        "LE",
	GE:        "GE",

	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	COMMA:     "COMMA",
	COLON:     "COLON",
	SEMICOLON: "SEMICOLON",
	NEWLINE:   "NEWLINE",

	WHERE: "WHERE",
	LET:   "LET",
	LETIN: "LETIN",
	IF:    "IF",
	THEN:  "THEN",
	ELSE:  "ELSE",
	SIN:   "SIN",
	COS:   "COS",
	TAN:   "TAN",
	ABS:   "ABS",
	FLOOR: "FLOOR",
	MIN:   "MIN",
	MAX:   "MAX",
	CLAMP: "CLAMP",

	THETA:   "THETA",
	PI:      "PI",
	EPSILON: "EPSILON",
	DELTA:   "DELTA",

	REAL: "REAL",
	INT:  "INT",

	SUBSCRIPT:   "SUBSCRIPT",
	SUPERSCRIPT: "SUPERSCRIPT",
}

// String returns the kind's canonical name, used in diagnostics and the
// --debug token dump.
func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// IsLiteral reports whether k is IDENT or NUMBER.
func (k Kind) IsLiteral() bool { return k > EOF && k < literalEnd }

// IsOperator reports whether k is one of the operator-symbol kinds.
func (k Kind) IsOperator() bool { return k > literalEnd && k < operatorEnd }

// IsKeyword reports whether k is one of the reserved keywords.
func (k Kind) IsKeyword() bool { return k > structuralEnd && k < keywordEnd }

// keywords maps a lower-cased identifier spelling to its keyword Kind.
var keywords = map[string]Kind{
	"where": WHERE,
	"let":   LET,
	"in":    LETIN,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"sin":   SIN,
	"cos":   COS,
	"tan":   TAN,
	"abs":   ABS,
	"floor": FLOOR,
	"min":   MIN,
	"max":   MAX,
	"clamp": CLAMP,
}

// LookupKeyword returns the keyword Kind for name (case-insensitive) and
// true, or (IDENT, false) if name is not a reserved word.
func LookupKeyword(name string) (Kind, bool) {
	if k, ok := keywords[lower(name)]; ok {
		return k, true
	}
	return IDENT, false
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Position identifies a source location by 1-based line and column, where
// column counts Unicode code points (runes), not bytes, from the start of
// the line.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit: its Kind, the literal text the lexer
// captured for it (already rewritten for subscripts/escapes where
// applicable), and its source Position.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

func (t Token) String() string {
	if t.Literal == "" {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind.String(), t.Literal)
}
