package xlpaste

import (
	"math"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	CellBlank CellType = iota
	CellNumber
	CellString
	CellBoolean
	CellFormula
	CellError
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellBlank:
		return "Blank"
	case CellNumber:
		return "Number"
	case CellString:
		return "String"
	case CellBoolean:
		return "Boolean"
	case CellFormula:
		return "Formula"
	case CellError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Error codes stored in error-typed cells.
const (
	ErrCodeRef   = "#REF!"
	ErrCodeDiv0  = "#DIV/0!"
	ErrCodeValue = "#VALUE!"
	ErrCodeName  = "#NAME?"
	ErrCodeNA    = "#N/A"
	ErrCodeNum   = "#NUM!"
)

// ErrorValue is an error code held as a formula result, such as "#DIV/0!".
type ErrorValue string

func (e ErrorValue) String() string { return string(e) }

// CellContent holds everything stored in one cell. Paste treats it as an opaque
// bundle apart from locating formula references and combining numbers.
type CellContent struct {
	Type    CellType
	Value   any    // float64, string, bool, or an error code string
	Formula string // formula text without the leading "="
	StyleID int    // opaque style attribute, copied as-is
	Cached  any    // last recalculated result of a formula cell
}

// NumberCell returns numeric content.
func NumberCell(v float64) CellContent { return CellContent{Type: CellNumber, Value: v} }

// StringCell returns text content.
func StringCell(s string) CellContent { return CellContent{Type: CellString, Value: s} }

// BoolCell returns boolean content.
func BoolCell(b bool) CellContent { return CellContent{Type: CellBoolean, Value: b} }

// FormulaCell returns formula content. A leading "=" is stripped.
func FormulaCell(formula string) CellContent {
	return CellContent{Type: CellFormula, Formula: strings.TrimPrefix(formula, "=")}
}

// ErrorCell returns error content carrying an error code such as "#REF!".
func ErrorCell(code string) CellContent { return CellContent{Type: CellError, Value: code} }

// ValueCell infers the content type from a Go value.
func ValueCell(v any) CellContent {
	switch x := v.(type) {
	case nil:
		return CellContent{}
	case CellContent:
		return x
	case ErrorValue:
		return ErrorCell(string(x))
	case bool:
		return BoolCell(x)
	case string:
		if x == "" {
			return CellContent{}
		}
		if strings.HasPrefix(x, "=") && len(x) > 1 {
			return FormulaCell(x)
		}
		return StringCell(x)
	}
	if f, ok := toFloat(v); ok {
		return NumberCell(f)
	}
	return StringCell(formatValue(v))
}

// IsBlank reports whether the cell holds no content. Style alone does not count.
func IsBlank(c CellContent) bool {
	switch c.Type {
	case CellBlank:
		return true
	case CellString:
		s, _ := c.Value.(string)
		return s == ""
	default:
		return false
	}
}

// IsFormula returns true if this cell contains a formula.
func (c CellContent) IsFormula() bool {
	return c.Type == CellFormula || c.Formula != ""
}

// Number returns the numeric value of the cell and whether it has one.
// Blank cells read as zero.
func (c CellContent) Number() (float64, bool) {
	switch c.Type {
	case CellBlank:
		return 0, true
	case CellNumber:
		return toFloat(c.Value)
	default:
		return 0, false
	}
}

// Result returns what the cell displays: the cached result of a formula,
// otherwise the stored value.
func (c CellContent) Result() any {
	if c.IsFormula() {
		return c.Cached
	}
	return c.Value
}

// toFloat converts any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// formatValue renders a value the way a sheet displays it in general format.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case ErrorValue:
		return string(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		if math.IsInf(x, 0) {
			return ErrCodeDiv0
		}
		if math.IsNaN(x) {
			return ErrCodeNum
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	if f, ok := toFloat(v); ok {
		return formatValue(f)
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
