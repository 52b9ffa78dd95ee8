package codegen

import "strings"

// cTypeForTag maps a parser type tag — either a parameter type ("scalar",
// "ℝ", "ℝ3", "ℝ4", "ℝ4x4", "ℤ") or an inferred return type ("scalar",
// "vec4", "mat4", "int") — to its C spelling. Unrecognized tags fall back
// to float, matching spec §4.3's "unknown → float" rule.
func cTypeForTag(tag string) string {
	switch tag {
	case "scalar", "ℝ", "ℝ1", "":
		return "float"
	case "ℝ3", "ℝ4", "vec3", "vec4":
		return "b3d_vec_t"
	case "ℝ4x4", "mat4":
		return "b3d_mat_t"
	case "ℤ", "int":
		return "int"
	default:
		return "float"
	}
}

// intArgPositions names, per function, the zero-based argument indices
// that must be emitted as plain integers rather than "N.Nf" float
// literals. Currently only mat_row3's second argument.
var intArgPositions = map[string]map[int]bool{
	"mat_row3": {1: true},
}

func isIntArg(funcName string, index int) bool {
	return intArgPositions[funcName][index]
}

// renderNumber formats a Number literal's source text as a C literal. In
// int context (an argument position from intArgPositions, or a matrix
// row/column position) any fractional part is dropped and no "f" suffix is
// added.
func renderNumber(literal string, intContext bool) string {
	if intContext {
		if dot := strings.IndexByte(literal, '.'); dot >= 0 {
			return literal[:dot]
		}
		return literal
	}
	if strings.Contains(literal, ".") {
		return literal + "f"
	}
	return literal + ".0f"
}

// componentForDigit maps a single-digit index literal to its b3d_vec_t
// field name.
func componentForDigit(digit string) string {
	switch digit {
	case "0":
		return "x"
	case "1":
		return "y"
	case "2":
		return "z"
	case "3":
		return "w"
	default:
		return ""
	}
}

// componentLetter reports whether name is itself already a vector
// component letter.
func componentLetter(name string) string {
	switch name {
	case "x", "y", "z", "w":
		return name
	default:
		return ""
	}
}

// renderVariable rewrites the five constant identifiers the DSL treats
// specially; every other name passes through unchanged (spec §4.3).
func (g *Generator) renderVariable(name string) string {
	switch name {
	case "PI":
		if g.mode == ModeFixed {
			return "B3D_FP_PI"
		}
		return "B3D_PI"
	case "EPSILON":
		if g.mode == ModeFixed {
			return "B3D_FP_EPSILON"
		}
		return "B3D_EPSILON"
	case "ZERO":
		if g.mode == ModeFixed {
			return "0"
		}
		return "0.0f"
	case "ONE":
		if g.mode == ModeFixed {
			return "B3D_FP_ONE"
		}
		return "1.0f"
	case "I":
		return "b3d_mat_ident" + g.suffix + "()"
	default:
		return name
	}
}
