package compiler

import (
	"strings"
	"testing"

	"github.com/b3d/mathc/internal/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyInputIsError(t *testing.T) {
	c := New("")
	_, err := c.Compile()
	assert.Error(t, err)
}

func TestCompileSingleFunction(t *testing.T) {
	c := New("len(v) = √(v · v)\nwhere v ∈ ℝ⁴")
	out, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, out, "Auto-generated from math.dsl")
	assert.Contains(t, out, "Mode: floating-point")
	assert.Contains(t, out, "static inline float b3d_len(b3d_vec_t v) {")
	assert.Contains(t, out, "return b3d_sqrtf(b3d_vec_dot(v, v));")
}

func TestCompileMultipleFunctionsInSourceOrder(t *testing.T) {
	c := New("f(a) = a + 1\ng(a) = a - 1")
	out, err := c.Compile()
	require.NoError(t, err)
	fIdx := strings.Index(out, "b3d_f(")
	gIdx := strings.Index(out, "b3d_g(")
	require.NotEqual(t, -1, fIdx)
	require.NotEqual(t, -1, gIdx)
	assert.Less(t, fIdx, gIdx)
}

func TestCompileRespectsModeAndSuffix(t *testing.T) {
	c := New("len(v) = √(v · v)\nwhere v ∈ ℝ⁴")
	c.SetMode(codegen.ModeFixed)
	c.SetSuffix("_sse")
	out, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, out, "Mode: fixed-point")
	assert.Contains(t, out, "b3d_len_sse(")
}

func TestCompileParseErrorIsWrapped(t *testing.T) {
	c := New("f(a, b = a + b")
	_, err := c.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestCompileExposesTokensAndFuncsAfterRun(t *testing.T) {
	c := New("f(a) = a")
	_, err := c.Compile()
	require.NoError(t, err)
	assert.NotEmpty(t, c.Tokens())
	require.Len(t, c.Funcs(), 1)
	assert.Equal(t, "f", c.Funcs()[0].Name)
}
