package codegen

import (
	"testing"

	"github.com/b3d/mathc/internal/ast"
	"github.com/b3d/mathc/internal/lexer"
	"github.com/b3d/mathc/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func genOne(t *testing.T, mode Mode, suffix, src string) string {
	t.Helper()
	toks := lexer.Lex(src)
	funcs, err := parser.New(toks, parser.WithSource(src)).Parse()
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	out, err := New(mode, suffix).Generate(funcs[0])
	require.NoError(t, err)
	return out
}

func TestGenerateDot3SumExpansion(t *testing.T) {
	out := genOne(t, ModeFloat, "", "dot3(a, b) = ∑(i ∈ xyz) a_i · b_i where a ∈ ℝ³ b ∈ ℝ³")
	require.Contains(t, out, "return (a.x * b.x) + (a.y * b.y) + (a.z * b.z);")
	require.Contains(t, out, "float b3d_dot3(b3d_vec_t a, b3d_vec_t b) {")
}

func TestGenerateLenUsesSqrtAndVecDot(t *testing.T) {
	out := genOne(t, ModeFloat, "", "len(v) = √(v · v)\nwhere v ∈ ℝ⁴")
	require.Contains(t, out, "return b3d_sqrtf(b3d_vec_dot(v, v));")
}

func TestGenerateScaleComprehension(t *testing.T) {
	out := genOne(t, ModeFloat, "", "scale(v, s) = [v_i * s | i ∈ xyzw] where v ∈ ℝ⁴ s ∈ ℝ")
	require.Contains(t, out, "return (b3d_vec_t){(v.x * s), (v.y * s), (v.z * s), (v.w * s)};")
}

func TestGenerateClamp01NestedTernary(t *testing.T) {
	out := genOne(t, ModeFloat, "", "clamp01(x) = if x < 0 then 0 else if x > 1 then 1 else x")
	require.Contains(t, out, "return ((x < 0.0f) ? 0.0f : ((x > 1.0f) ? 1.0f : x));")
}

func TestGenerateSafeNormLetAndTernary(t *testing.T) {
	out := genOne(t, ModeFloat, "",
		"safe_norm(v) = let n = ‖v‖ in if n < EPSILON then v else [v_i / n | i ∈ xyzw]\nwhere v ∈ ℝ⁴")
	require.Contains(t, out, "float n = b3d_vec_length(v);")
	require.Contains(t, out, "return ((n < B3D_EPSILON) ? v : (b3d_vec_t){(v.x / n), (v.y / n), (v.z / n), (v.w / n)});")
}

func TestGenerateSafeNormWithLetElseUsesBlockForm(t *testing.T) {
	out := genOne(t, ModeFloat, "",
		"safe_norm(v) = let n = ‖v‖ in if n < EPSILON then v else let r = 1 / n in [v_i * r | i ∈ xyzw]\nwhere v ∈ ℝ⁴")
	require.Contains(t, out, "float n = b3d_vec_length(v);")
	require.Contains(t, out, "if ((n < B3D_EPSILON)) {")
	require.Contains(t, out, "    return v;")
	require.Contains(t, out, "} else {")
	require.Contains(t, out, "    float r = (1.0f / n);")
	require.Contains(t, out, "    return (b3d_vec_t){(v.x * r), (v.y * r), (v.z * r), (v.w * r)};")
}

func TestGenerateDot3FixedModeNestsFPAdd(t *testing.T) {
	out := genOne(t, ModeFixed, "", "dot3(a, b) = ∑(i ∈ xyz) a_i · b_i where a ∈ ℝ³ b ∈ ℝ³")
	require.Contains(t, out,
		"return B3D_FP_ADD(B3D_FP_ADD(B3D_FP_MUL(a.x, b.x), B3D_FP_MUL(a.y, b.y)), B3D_FP_MUL(a.z, b.z));")
}

func TestGenerateSuffixAppliedToRuntimeCalls(t *testing.T) {
	out := genOne(t, ModeFloat, "_sse", "len(v) = √(v · v)\nwhere v ∈ ℝ⁴")
	require.Contains(t, out, "b3d_vec_dot_sse(v, v)")
	require.Contains(t, out, "b3d_len_sse(")
}

func TestHeaderCommentNamesMode(t *testing.T) {
	require.Contains(t, HeaderComment(ModeFloat), "Mode: floating-point")
	require.Contains(t, HeaderComment(ModeFixed), "Mode: fixed-point")
}

func TestNeedsBlockFormOnlyWhenBranchIsLet(t *testing.T) {
	ternaryShaped := ast.If{
		Cond: ast.BinOp{Op: "<", Left: ast.Variable{Name: "x"}, Right: ast.Number{Literal: "0"}},
		Then: ast.Number{Literal: "0"},
		Else: ast.Variable{Name: "x"},
	}
	require.False(t, needsBlockForm(ternaryShaped))

	blockShaped := ast.If{
		Cond: ast.BinOp{Op: "<", Left: ast.Variable{Name: "x"}, Right: ast.Number{Literal: "0"}},
		Then: ast.Let{
			Bindings: []ast.Binding{{Name: "y", Value: ast.Number{Literal: "1"}}},
			Body:     ast.Variable{Name: "y"},
		},
		Else: ast.Variable{Name: "x"},
	}
	require.True(t, needsBlockForm(blockShaped))
}

func TestGenerateMatFuncSnapshot(t *testing.T) {
	out := genOne(t, ModeFloat, "", "mat_mul_vec(m, v) = m · v where m ∈ ℝ⁴ˣ⁴ v ∈ ℝ⁴")
	snaps.MatchSnapshot(t, out)
}
