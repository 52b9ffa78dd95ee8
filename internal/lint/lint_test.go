package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFileFlagsRawLibmCall(t *testing.T) {
	src := "#include \"b3d-math.h\"\nfloat f(float x) { return sqrtf(x); }\n"
	offenses := CheckFile(src)
	require.Len(t, offenses, 1)
	assert.Equal(t, "sqrtf", offenses[0].Func)
	assert.Equal(t, 2, offenses[0].Line)
}

func TestCheckFileIgnoresB3DPrefixedCall(t *testing.T) {
	src := "#include \"b3d-math.h\"\nfloat f(float x) { return b3d_sqrtf(x); }\n"
	assert.Empty(t, CheckFile(src))
}

func TestCheckFileIgnoresCommentsAndStrings(t *testing.T) {
	src := "#include \"b3d-math.h\"\n" +
		"// call sqrtf(x) here eventually\n" +
		"/* sqrtf(x) also mentioned here */\n" +
		"const char *msg = \"sqrtf(x)\";\n" +
		"float f(float x) { return b3d_sqrtf(x); }\n"
	assert.Empty(t, CheckFile(src))
}

func TestCheckFileFlagsMissingInclude(t *testing.T) {
	src := "float f(float x) { return b3d_sqrtf(x); }\n"
	offenses := CheckFile(src)
	require.NotEmpty(t, offenses)
	assert.Equal(t, "missing-include", offenses[0].Func)
}

func TestCheckFileDoesNotFlagSuffixedIdentifier(t *testing.T) {
	src := "#include \"b3d-math.h\"\nfloat rsqrtf(float x) { return b3d_sqrtf(x); }\n"
	assert.Empty(t, CheckFile(src))
}

func TestCheckDirWalksCFiles(t *testing.T) {
	dir := t.TempDir()
	bad := "float f(float x) { return fabsf(x); }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.c"), []byte(bad), 0o644))
	good := "#include \"b3d-math.h\"\nfloat g(float x) { return b3d_fabsf(x); }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.c"), []byte(good), 0o644))

	results, err := CheckDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	_, ok := results[filepath.Join(dir, "bad.c")]
	assert.True(t, ok)
}

func TestReportExitCode(t *testing.T) {
	_, code := Report(map[string][]Offense{})
	assert.Equal(t, 0, code)

	_, code = Report(map[string][]Offense{"f.c": {{Line: 1, Func: "sinf", Text: "sinf(x);"}}})
	assert.Equal(t, 1, code)
}
