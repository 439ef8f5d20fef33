package xlpaste

import (
	"errors"
	"fmt"
)

// PasteType selects which attribute categories of a cell a paste transfers.
type PasteType int

const (
	PasteAll              PasteType = iota // value, formula and style
	PasteFormulas                          // value and formula, destination style kept
	PasteValues                            // value only; formulas paste their result
	PasteFormats                           // style only
	PasteValuesAndFormats                  // value and style; formulas paste their result
)

// String returns the lowercase name used on the command line.
func (t PasteType) String() string {
	switch t {
	case PasteAll:
		return "all"
	case PasteFormulas:
		return "formulas"
	case PasteValues:
		return "values"
	case PasteFormats:
		return "formats"
	case PasteValuesAndFormats:
		return "values-formats"
	default:
		return fmt.Sprintf("PasteType(%d)", int(t))
	}
}

// ParsePasteType parses the names produced by PasteType.String.
func ParsePasteType(s string) (PasteType, error) {
	switch s {
	case "", "all":
		return PasteAll, nil
	case "formulas":
		return PasteFormulas, nil
	case "values":
		return PasteValues, nil
	case "formats":
		return PasteFormats, nil
	case "values-formats":
		return PasteValuesAndFormats, nil
	}
	return PasteAll, fmt.Errorf("unknown paste type %q", s)
}

// attributes reports which categories t transfers.
func (t PasteType) attributes() (value, formula, style bool) {
	switch t {
	case PasteAll:
		return true, true, true
	case PasteFormulas:
		return true, true, false
	case PasteValues:
		return true, false, false
	case PasteFormats:
		return false, false, true
	case PasteValuesAndFormats:
		return true, false, true
	}
	return false, false, false
}

// PasteOperation is the arithmetic applied between the existing destination value
// and the incoming source value.
type PasteOperation int

const (
	OpNone PasteOperation = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// String returns the lowercase name used on the command line.
func (op PasteOperation) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return fmt.Sprintf("PasteOperation(%d)", int(op))
	}
}

// ParsePasteOperation parses the names produced by PasteOperation.String.
func ParsePasteOperation(s string) (PasteOperation, error) {
	switch s {
	case "", "none":
		return OpNone, nil
	case "add":
		return OpAdd, nil
	case "subtract", "sub":
		return OpSubtract, nil
	case "multiply", "mul":
		return OpMultiply, nil
	case "divide", "div":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("unknown paste operation %q", s)
}

// apply combines dst and src. ok is false when the result is not a finite number.
func (op PasteOperation) apply(dst, src float64) (float64, bool) {
	switch op {
	case OpAdd:
		return dst + src, true
	case OpSubtract:
		return dst - src, true
	case OpMultiply:
		return dst * src, true
	case OpDivide:
		if src == 0 {
			return 0, false
		}
		return dst / src, true
	}
	return src, true
}

// Transfer computes the new content of a destination cell when src is pasted onto dst.
//
// Only the attribute categories selected by pt are taken from src. A formula is moved
// by (dRow, dCol) through shifter; a reference pushed off the sheet turns the cell into
// a #REF! error. With an operation other than OpNone two numeric values are combined;
// any other combination overwrites, and the returned error wraps ErrUnsupportedCombination
// so the caller can report it. The returned content is always usable.
func Transfer(src, dst CellContent, pt PasteType, op PasteOperation, dRow, dCol int, shifter ReferenceShifter) (CellContent, error) {
	takeValue, takeFormula, takeStyle := pt.attributes()

	out := dst
	if takeStyle {
		out.StyleID = src.StyleID
	}
	if !takeValue {
		return out, nil
	}

	incoming, err := incomingContent(src, takeFormula, dRow, dCol, shifter)
	incoming.StyleID = out.StyleID
	if err != nil {
		return incoming, err
	}

	if op == OpNone {
		return incoming, nil
	}
	return combine(dst, incoming, op)
}

// incomingContent extracts what src contributes to the destination value.
func incomingContent(src CellContent, takeFormula bool, dRow, dCol int, shifter ReferenceShifter) (CellContent, error) {
	if !src.IsFormula() {
		return CellContent{Type: src.Type, Value: src.Value}, nil
	}
	if !takeFormula {
		// a text result is kept as text even when it reads like a formula
		if text, ok := src.Cached.(string); ok && text != "" {
			return StringCell(text), nil
		}
		return ValueCell(src.Cached), nil
	}

	formula := src.Formula
	if shifter != nil {
		shifted, err := shifter.Shift(formula, dRow, dCol)
		if err != nil {
			if errors.Is(err, ErrRefOutOfRange) {
				return ErrorCell(ErrCodeRef), err
			}
			return ErrorCell(ErrCodeValue), err
		}
		formula = shifted
	}
	return CellContent{Type: CellFormula, Formula: formula, Cached: src.Cached}, nil
}

// combine applies op between the existing destination and the incoming value.
func combine(dst, incoming CellContent, op PasteOperation) (CellContent, error) {
	if dst.Type == CellBlank && incoming.Type == CellBlank {
		return incoming, nil
	}
	a, okDst := dst.Number()
	b, okSrc := incoming.Number()
	if !okDst || !okSrc {
		return incoming, fmt.Errorf("%w: %s on %s and %s", ErrUnsupportedCombination, op, dst.Type, incoming.Type)
	}
	v, ok := op.apply(a, b)
	if !ok {
		return CellContent{Type: CellError, Value: ErrCodeDiv0, StyleID: incoming.StyleID}, nil
	}
	return CellContent{Type: CellNumber, Value: v, StyleID: incoming.StyleID}, nil
}
