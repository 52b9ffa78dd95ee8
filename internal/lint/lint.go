// Package lint checks that generated (or hand-written) C sources call the
// b3d_* math wrappers instead of reaching for raw libm functions directly.
//
// Ported line-for-line from the original check-math-usage.py: strip
// comments and string literals while preserving line structure, then
// regex-match the forbidden names where they aren't already prefixed
// with "b3d_".
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ForbiddenFuncs are the raw libm names examples must not call directly.
var ForbiddenFuncs = []string{"sinf", "cosf", "tanf", "sqrtf", "fabsf", "sincosf"}

var funcPattern = regexp.MustCompile(`(` + strings.Join(ForbiddenFuncs, "|") + `)\s*\(`)

var includePattern = regexp.MustCompile(`#include\s+[<"]b3d-math\.h[>"]`)

var wrapperPattern = regexp.MustCompile(`\bb3d_(sinf|cosf|tanf|sqrtf|fabsf|sincosf)\s*\(`)

// Offense is one reported violation. Line 0 with Func "missing-include"
// is the pseudo-offense for a file that uses b3d_* wrappers but never
// includes b3d-math.h.
type Offense struct {
	Line int
	Func string
	Text string
}

// stripCommentsAndStrings blanks out C block/line comments, string
// literals, and character literals, preserving column positions and line
// count, so the forbidden-function regex only ever sees real code.
// Go's regexp package (RE2) has no negative-lookbehind, unlike the
// original's "(?<![a-zA-Z0-9_])" guard, so that check is done by hand
// below in CheckFile instead of folded into this pattern.
func stripCommentsAndStrings(content string) []string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	inBlockComment := false

	for _, line := range lines {
		var sb strings.Builder
		n := len(line)
		i := 0
		for i < n {
			switch {
			case inBlockComment:
				end := strings.Index(line[i:], "*/")
				if end == -1 {
					sb.WriteString(strings.Repeat(" ", n-i))
					i = n
					continue
				}
				sb.WriteString(strings.Repeat(" ", end+2))
				i += end + 2
				inBlockComment = false

			case i+1 < n && line[i] == '/' && line[i+1] == '*':
				end := strings.Index(line[i+2:], "*/")
				if end == -1 {
					sb.WriteString(strings.Repeat(" ", n-i))
					inBlockComment = true
					i = n
					continue
				}
				sb.WriteString(strings.Repeat(" ", end+4))
				i += end + 4

			case i+1 < n && line[i] == '/' && line[i+1] == '/':
				sb.WriteString(strings.Repeat(" ", n-i))
				i = n

			case line[i] == '"':
				sb.WriteByte(' ')
				i++
				for i < n {
					if line[i] == '\\' && i+1 < n {
						sb.WriteString("  ")
						i += 2
						continue
					}
					if line[i] == '"' {
						sb.WriteByte(' ')
						i++
						break
					}
					sb.WriteByte(' ')
					i++
				}

			case line[i] == '\'':
				sb.WriteByte(' ')
				i++
				for i < n {
					if line[i] == '\\' && i+1 < n {
						sb.WriteString("  ")
						i += 2
						continue
					}
					if line[i] == '\'' {
						sb.WriteByte(' ')
						i++
						break
					}
					sb.WriteByte(' ')
					i++
				}

			default:
				sb.WriteByte(line[i])
				i++
			}
		}
		result = append(result, sb.String())
	}
	return result
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// CheckFile reports every forbidden raw-math call in content, plus the
// missing-include pseudo-offense when the file uses b3d_* wrappers
// without including b3d-math.h.
func CheckFile(content string) []Offense {
	var offenses []Offense

	hasInclude := includePattern.MatchString(content)
	usesWrappers := wrapperPattern.MatchString(content)

	origLines := strings.Split(content, "\n")
	cleanedLines := stripCommentsAndStrings(content)

	for i, cleaned := range cleanedLines {
		if i >= len(origLines) {
			break
		}
		for _, loc := range funcPattern.FindAllStringSubmatchIndex(cleaned, -1) {
			start := loc[2]
			if start > 0 && isWordByte(cleaned[start-1]) {
				continue
			}
			name := cleaned[loc[2]:loc[3]]
			offenses = append(offenses, Offense{
				Line: i + 1,
				Func: name,
				Text: strings.TrimSpace(origLines[i]),
			})
		}
	}

	if usesWrappers && !hasInclude {
		offenses = append([]Offense{{Line: 0, Func: "missing-include", Text: "b3d-math.h not included"}}, offenses...)
	}

	return offenses
}

// CheckDir walks dir for *.c files and runs CheckFile on each, returning
// only the files that have offenses, keyed by path.
func CheckDir(dir string) (map[string][]Offense, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.c"))
	if err != nil {
		return nil, err
	}

	results := map[string][]Offense{}
	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if offenses := CheckFile(string(content)); len(offenses) > 0 {
			results[path] = offenses
		}
	}
	return results, nil
}

// Report formats results the way the original script's stdout summary
// does, and returns the process exit code (1 if any offense was found).
func Report(results map[string][]Offense) (string, int) {
	if len(results) == 0 {
		return "OK: all files use b3d-math.h wrappers\n", 0
	}

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var sb strings.Builder
	total := 0
	for _, path := range paths {
		offenses := results[path]
		fmt.Fprintf(&sb, "\n%s:\n", path)
		for _, o := range offenses {
			if o.Func == "missing-include" {
				fmt.Fprintf(&sb, "  error: %s\n", o.Text)
			} else {
				fmt.Fprintf(&sb, "  %d: use b3d_%s() instead of %s()\n", o.Line, o.Func, o.Func)
				fmt.Fprintf(&sb, "       %s\n", o.Text)
			}
			total++
		}
	}
	fmt.Fprintf(&sb, "\n%d error(s) in %d file(s)\n", total, len(results))
	return sb.String(), 1
}
