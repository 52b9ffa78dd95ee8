package codegen

import (
	"regexp"
	"strconv"
	"strings"
)

// rangeIndices expands a range descriptor ("xyz", "xyzw", "a..b", or an
// unrecognized string) into its concrete index list, per spec §4.3. An
// unrecognized descriptor expands to itself as a single-element list —
// the generator never rejects a range it can't parse; it just produces
// degenerate output, consistent with the DSL's no-validation contract.
func rangeIndices(desc string) []string {
	switch desc {
	case "xyz":
		return []string{"x", "y", "z"}
	case "xyzw":
		return []string{"x", "y", "z", "w"}
	}

	if strings.Contains(desc, "..") {
		parts := strings.SplitN(desc, "..", 2)
		a, errA := strconv.Atoi(parts[0])
		b, errB := strconv.Atoi(parts[1])
		if errA == nil && errB == nil {
			indices := make([]string, 0, b-a)
			for i := a; i < b; i++ {
				indices = append(indices, strconv.Itoa(i))
			}
			return indices
		}
	}

	return []string{desc}
}

var matrixFractionalIndex = regexp.MustCompile(`\.m\[(\d)\.0f\]`)

// substituteIndex takes a rendered body template (the loop variable still
// present as plain text) and produces one expanded instantiation for idx,
// applying the substitution clean-up rules documented in spec §4.3.
func substituteIndex(template, loopVar, idx string) string {
	replaced := wholeWordReplace(template, loopVar, idx)

	switch {
	case componentLetter(idx) != "":
		replaced = rewriteBracketIndex(replaced, idx, "."+idx)
	case componentForDigit(idx) != "":
		replaced = strings.ReplaceAll(replaced, "["+idx+".0f]", "["+idx+"]")
		replaced = rewriteBracketIndex(replaced, idx, "."+componentForDigit(idx))
	}

	replaced = matrixFractionalIndex.ReplaceAllString(replaced, ".m[$1]")
	return replaced
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func wholeWordReplace(text, name, repl string) string {
	re, ok := wordBoundaryCache[name]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		wordBoundaryCache[name] = re
	}
	return re.ReplaceAllString(text, repl)
}

// rewriteBracketIndex rewrites every "[idx]" in text to replacement,
// except where it is immediately followed by another "[" — that shape is
// the first half of a MatrixIndex ("[idx][other]") and must be preserved,
// per spec §4.3's substitution clean-up rules. This can't be expressed as
// a single RE2 pattern (no lookahead), so it's a manual scan.
func rewriteBracketIndex(text, idx, replacement string) string {
	target := "[" + idx + "]"
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(text[i:], target)
		if j < 0 {
			sb.WriteString(text[i:])
			break
		}
		abs := i + j
		sb.WriteString(text[i:abs])
		after := abs + len(target)
		if after < len(text) && text[after] == '[' {
			sb.WriteString(target)
		} else {
			sb.WriteString(replacement)
		}
		i = after
	}
	return sb.String()
}
