package xlpaste

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReferenceShifter adjusts the relative references of a formula when it is copied
// dRow rows and dCol columns away from where it was written.
type ReferenceShifter interface {
	Shift(formula string, dRow, dCol int) (string, error)
}

// A1Shifter implements ReferenceShifter for A1-style formulas.
// Absolute parts ($A, $1) stay fixed; relative parts move. A reference that would
// leave the sheet makes Shift fail with ErrRefOutOfRange.
type A1Shifter struct {
	MaxRows int
	MaxCols int
}

// NewA1Shifter creates a shifter bounded by the default worksheet limits.
func NewA1Shifter() *A1Shifter {
	return &A1Shifter{MaxRows: excelize.TotalRows, MaxCols: excelize.MaxColumns}
}

var (
	cellPartRegex = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)$`)
	colPartRegex  = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})$`)
	rowPartRegex  = regexp.MustCompile(`^(\$?)([0-9]+)$`)
)

// Shift rewrites every reference of formula and leaves the rest of the text as
// written. Text literals, array constants, functions and defined names are kept.
func (s *A1Shifter) Shift(formula string, dRow, dCol int) (string, error) {
	formula = strings.TrimPrefix(formula, "=")
	if formula == "" || (dRow == 0 && dCol == 0) {
		return formula, nil
	}

	result := formula
	spans := operandSpans(formula)
	// Process spans in reverse order to preserve indices
	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		ref := formula[sp[0]:sp[1]]
		shifted, err := s.shiftRef(ref, dRow, dCol)
		if err != nil {
			return "", fmt.Errorf("shift %q in %q: %w", ref, formula, err)
		}
		result = result[:sp[0]] + shifted + result[sp[1]:]
	}
	return result, nil
}

// operandSpans returns the byte ranges of formula that may hold a reference:
// runs of name characters, including quoted sheet names and bracketed parts.
// String literals, array constants and function names are skipped.
func operandSpans(formula string) [][2]int {
	var spans [][2]int
	for i := 0; i < len(formula); {
		c := formula[i]
		switch {
		case c == '"':
			i = skipQuoted(formula, i, '"')
		case c == '{':
			i = skipArray(formula, i)
		case c == '\'' || c == '[' || isNameByte(c):
			start := i
			i = scanOperand(formula, i)
			if i < len(formula) && formula[i] == '(' {
				continue
			}
			spans = append(spans, [2]int{start, i})
		default:
			i++
		}
	}
	return spans
}

func scanOperand(formula string, i int) int {
	for i < len(formula) {
		switch c := formula[i]; {
		case c == '\'':
			i = skipQuoted(formula, i, '\'')
		case c == '[':
			if j := strings.IndexByte(formula[i:], ']'); j >= 0 {
				i += j + 1
			} else {
				return len(formula)
			}
		case isNameByte(c):
			i++
		default:
			return i
		}
	}
	return i
}

// skipQuoted returns the index after the literal opened at i. A doubled quote
// inside the literal is an escaped quote.
func skipQuoted(formula string, i int, quote byte) int {
	for j := i + 1; j < len(formula); j++ {
		if formula[j] != quote {
			continue
		}
		if j+1 < len(formula) && formula[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(formula)
}

func skipArray(formula string, i int) int {
	for j := i + 1; j < len(formula); {
		switch formula[j] {
		case '"':
			j = skipQuoted(formula, j, '"')
		case '}':
			return j + 1
		default:
			j++
		}
	}
	return len(formula)
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c >= 0x80:
		return true
	}
	return strings.IndexByte("_$.!:#\\?", c) >= 0
}

// shiftRef shifts one operand such as "A1", "Sheet1!$A1:B$2", "A:C", "3:5" or
// "Sheet1!A1:Sheet1!B2". Anything else is returned unchanged.
func (s *A1Shifter) shiftRef(ref string, dRow, dCol int) (string, error) {
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return ref, nil
	}
	prefixes := make([]string, len(parts))
	for i, p := range parts {
		if idx := strings.LastIndex(p, "!"); idx >= 0 {
			prefixes[i] = p[:idx+1]
			parts[i] = p[idx+1:]
		}
	}
	if !sameKind(parts) {
		return ref, nil // defined name, number, error literal or structured reference
	}

	for i, p := range parts {
		shifted, err := s.shiftPart(p, dRow, dCol)
		if err != nil {
			return "", err
		}
		parts[i] = prefixes[i] + shifted
	}
	return strings.Join(parts, ":"), nil
}

// sameKind reports whether parts form a reference: one cell, or two cells, two
// columns or two rows. A lone word or number is a name, not a column or row span.
func sameKind(parts []string) bool {
	if len(parts) == 1 {
		return cellPartRegex.MatchString(parts[0])
	}
	for _, re := range []*regexp.Regexp{cellPartRegex, colPartRegex, rowPartRegex} {
		if re.MatchString(parts[0]) && re.MatchString(parts[1]) {
			return true
		}
	}
	return false
}

func (s *A1Shifter) shiftPart(part string, dRow, dCol int) (string, error) {
	if m := cellPartRegex.FindStringSubmatch(part); m != nil {
		col, err := s.moveCol(m[1], m[2], dCol)
		if err != nil {
			return "", err
		}
		row, err := s.moveRow(m[3], m[4], dRow)
		if err != nil {
			return "", err
		}
		return col + row, nil
	}
	if m := colPartRegex.FindStringSubmatch(part); m != nil {
		return s.moveCol(m[1], m[2], dCol)
	}
	m := rowPartRegex.FindStringSubmatch(part)
	return s.moveRow(m[1], m[2], dRow)
}

func (s *A1Shifter) moveCol(abs, name string, dCol int) (string, error) {
	col, err := NameToCol(name)
	if err != nil {
		return "", err
	}
	if abs == "" {
		col += dCol
	}
	if col < 0 || (s.MaxCols > 0 && col >= s.MaxCols) {
		return "", fmt.Errorf("%w: column %d", ErrRefOutOfRange, col+1)
	}
	return abs + ColToName(col), nil
}

func (s *A1Shifter) moveRow(abs, digits string, dRow int) (string, error) {
	row, err := strconv.Atoi(digits)
	if err != nil {
		return "", err
	}
	if abs == "" {
		row += dRow
	}
	if row < 1 || (s.MaxRows > 0 && row > s.MaxRows) {
		return "", fmt.Errorf("%w: row %d", ErrRefOutOfRange, row)
	}
	return abs + strconv.Itoa(row), nil
}
