package formula

import (
	"math"
	"strconv"
)

// Primitive represents the scalar result of a formula.
// types:
//   - float64: numeric values (integers are converted to float64)
//   - string: text values
type Primitive any

// Cell represents a spreadsheet cell: its name (e.g. A1, AB12) and the raw
// text it holds, which is either a literal or a formula starting with '='.
type Cell struct {
	Name    string
	Formula string
}

// CellTable looks cells up by name. the interpreter only reads from it.
type CellTable interface {
	Cell(name string) (Cell, bool)
}

// Identifiers looks up free identifiers used in formulas. values must be
// strings or numbers.
type Identifiers interface {
	Identifier(name string) (Primitive, bool)
}

// Cells is a map-backed CellTable
type Cells map[string]Cell

// Cell returns the cell stored under name
func (c Cells) Cell(name string) (Cell, bool) {
	cell, exists := c[name]
	return cell, exists
}

// Set stores formula under name, replacing any previous cell
func (c Cells) Set(name, formula string) {
	c[name] = Cell{Name: name, Formula: formula}
}

// Environment is a map-backed Identifiers
type Environment map[string]Primitive

// Identifier returns the value bound to name
func (e Environment) Identifier(name string) (Primitive, bool) {
	value, exists := e[name]
	return value, exists
}

// normalizePrimitive converts Go numeric types to float64 so the rest of
// the interpreter only has to deal with float64 and string
func normalizePrimitive(value any) (Primitive, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return nil, false
	}
}

// typeName names the dynamic type of a value in error messages
func typeName(value Primitive) string {
	switch value.(type) {
	case float64:
		return "number"
	case string:
		return "string"
	case nil:
		return "nothing"
	default:
		return "unknown"
	}
}

// FormatPrimitive renders a result for display. numbers use the shortest
// decimal form that parses back to the same value, infinities and NaN are
// spelled out.
func FormatPrimitive(value Primitive) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case nil:
		return ""
	default:
		return ""
	}
}

// FormatNumber formats n the way formulas print numbers
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		// collapse negative zero
		return "0"
	}
	// no exponent form, the lexer reads numbers as [0-9.] only
	return strconv.FormatFloat(n, 'f', -1, 64)
}
