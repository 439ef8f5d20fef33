package xlpaste

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef represents a single cell reference in a workbook.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5", or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	sheet, cellPart := splitSheet(s)
	cellPart = strings.ReplaceAll(cellPart, "$", "")
	if cellPart == "" {
		return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
	}

	col, row, err := parseCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}

	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// splitSheet separates "Sheet1!A1" into its sheet and cell parts.
// Quoted sheet names ('My Sheet'!A1) are unquoted.
func splitSheet(s string) (sheet, rest string) {
	idx := strings.LastIndex(s, "!")
	if idx < 0 {
		return "", s
	}
	sheet = s[:idx]
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet, s[idx+1:]
}

// parseCellName parses "A1" into col=0, row=0.
func parseCellName(name string) (col, row int, err error) {
	if len(name) == 0 {
		return 0, 0, fmt.Errorf("empty cell name")
	}

	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("invalid cell name: %q", name)
	}

	col, err = NameToCol(name[:i])
	if err != nil {
		return 0, 0, err
	}

	rowNum, err := strconv.Atoi(name[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell name: %q", name)
	}

	return col, rowNum - 1, nil // convert 1-based row to 0-based
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	name := c.CellName()
	if c.Sheet != "" {
		return quoteSheet(c.Sheet) + "!" + name
	}
	return name
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// quoteSheet wraps sheet names that need it in single quotes.
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '-+()!,;") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	result := ""
	col++ // convert to 1-based for algorithm
	for col > 0 {
		col-- // adjust for 0-indexed letter
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	if len(name) > 3 {
		return 0, fmt.Errorf("invalid column name: %q", name)
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// Rect is a rectangular block of cells, inclusive on every edge.
// A single cell is the degenerate rect with Top == Bottom and Left == Right.
type Rect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// NewRect creates a Rect from its corner coordinates.
func NewRect(top, left, bottom, right int) Rect {
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}
}

// CellRect returns the single-cell Rect at row, col.
func CellRect(row, col int) Rect {
	return Rect{Top: row, Left: col, Bottom: row, Right: col}
}

// ParseRect parses "A1:C5" or a single cell "B2". A sheet prefix, if any,
// is returned separately.
func ParseRect(s string) (string, Rect, error) {
	s = strings.TrimSpace(s)
	sheet, body := splitSheet(s)
	parts := strings.SplitN(body, ":", 2)

	first, err := ParseCellRef(parts[0])
	if err != nil {
		return "", Rect{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	last := first
	if len(parts) == 2 {
		last, err = ParseCellRef(parts[1])
		if err != nil {
			return "", Rect{}, fmt.Errorf("invalid range %q: %w", s, err)
		}
	}

	r, err := Normalize(NewRect(first.Row, first.Col, last.Row, last.Col))
	if err != nil {
		return "", Rect{}, err
	}
	return sheet, r, nil
}

// String formats the Rect as "A1:C5", or "A1" for a single cell.
func (r Rect) String() string {
	first := NewCellRef("", r.Top, r.Left).CellName()
	if r.IsCell() {
		return first
	}
	return first + ":" + NewCellRef("", r.Bottom, r.Right).CellName()
}

// Rows returns the number of rows the rect spans.
func (r Rect) Rows() int { return r.Bottom - r.Top + 1 }

// Cols returns the number of columns the rect spans.
func (r Rect) Cols() int { return r.Right - r.Left + 1 }

// IsCell reports whether the rect covers exactly one cell.
func (r Rect) IsCell() bool { return r.Top == r.Bottom && r.Left == r.Right }

// TopLeft returns the anchor cell of the rect on the given sheet.
func (r Rect) TopLeft(sheet string) CellRef { return NewCellRef(sheet, r.Top, r.Left) }

// Size returns the dimensions of the rect.
func (r Rect) Size() Size {
	return Size{Width: r.Cols(), Height: r.Rows()}
}

// Size represents width (columns) and height (rows).
type Size struct {
	Width  int
	Height int
}

// ZeroSize is a Size with zero width and height.
var ZeroSize = Size{Width: 0, Height: 0}

// String formats the Size as "(WxH)".
func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Width, s.Height)
}

// Transpose swaps width and height.
func (s Size) Transpose() Size {
	return Size{Width: s.Height, Height: s.Width}
}
