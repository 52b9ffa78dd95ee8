// Package compiler wires the lexer, parser, and code generator into the
// single construct/configure/compile entry point the CLI drives.
package compiler

import (
	"fmt"
	"strings"

	"github.com/b3d/mathc/internal/ast"
	"github.com/b3d/mathc/internal/codegen"
	"github.com/b3d/mathc/internal/lexer"
	"github.com/b3d/mathc/internal/parser"
	"github.com/b3d/mathc/internal/token"
)

// Compiler holds the configuration for one source-to-C compilation.
type Compiler struct {
	source string
	file   string
	debug  bool
	mode   codegen.Mode
	suffix string

	tokens []token.Token
	funcs  []ast.FuncDef
}

// New creates a compiler over the given DSL source text.
func New(source string) *Compiler {
	return &Compiler{source: source, mode: codegen.ModeFloat}
}

// SetDebug records whether debug output is wanted, as reported by Debug.
// Compile prints nothing itself and retains the data exposed by
// Tokens/Funcs whether or not debug is set; the CLI layer does the printing.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// SetMode selects floating-point or fixed-point arithmetic lowering.
func (c *Compiler) SetMode(m codegen.Mode) {
	c.mode = m
}

// SetSuffix sets the function-name suffix appended to every emitted
// definition and b3d_* runtime helper call (e.g. "_sse", "_neon"). The
// scalar wrappers (b3d_sinf, b3d_sqrtf, ...) are emitted without it.
func (c *Compiler) SetSuffix(suffix string) {
	c.suffix = suffix
}

// SetFile attaches a filename so parse errors can report it.
func (c *Compiler) SetFile(file string) {
	c.file = file
}

// Debug reports whether debug mode is on.
func (c *Compiler) Debug() bool {
	return c.debug
}

// Tokens returns the token stream produced by the most recent Compile
// call (nil before the first call).
func (c *Compiler) Tokens() []token.Token {
	return c.tokens
}

// Funcs returns the parsed function definitions from the most recent
// Compile call (nil before the first call).
func (c *Compiler) Funcs() []ast.FuncDef {
	return c.funcs
}

// Compile lexes, parses, and generates C source for every function
// definition found in the source, in source order, preceded by the
// standard header comment.
func (c *Compiler) Compile() (string, error) {
	c.tokens = lexer.Lex(c.source)

	p := parser.New(c.tokens, parser.WithSource(c.source), parser.WithFile(c.file))
	funcs, err := p.Parse()
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}
	c.funcs = funcs

	if len(funcs) == 0 {
		return "", fmt.Errorf("no function definitions found in input")
	}

	gen := codegen.New(c.mode, c.suffix)

	var sb strings.Builder
	sb.WriteString(codegen.HeaderComment(c.mode))
	for _, fn := range funcs {
		out, err := gen.Generate(fn)
		if err != nil {
			return "", fmt.Errorf("generating %s: %w", fn.Name, err)
		}
		sb.WriteString(out)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
