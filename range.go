package xlpaste

// Range is a rectangular block of cells on one sheet. It is a small value type;
// copying it is cheap and does not copy cell contents.
type Range struct {
	sheet *Sheet
	rect  Rect
}

// NewRange creates a range on sheet covering rect.
func NewRange(sheet *Sheet, rect Rect) Range {
	return Range{sheet: sheet, rect: rect}
}

// Sheet returns the sheet the range lives on.
func (r Range) Sheet() *Sheet { return r.sheet }

// Rect returns the covered rect.
func (r Range) Rect() Rect { return r.rect }

// Row returns the top row.
func (r Range) Row() int { return r.rect.Top }

// Column returns the left column.
func (r Range) Column() int { return r.rect.Left }

// LastRow returns the bottom row.
func (r Range) LastRow() int { return r.rect.Bottom }

// LastColumn returns the right column.
func (r Range) LastColumn() int { return r.rect.Right }

// RowCount returns the number of rows covered.
func (r Range) RowCount() int { return r.rect.Rows() }

// ColumnCount returns the number of columns covered.
func (r Range) ColumnCount() int { return r.rect.Cols() }

// String formats the range as "Sheet1!A1:C3".
func (r Range) String() string {
	if r.sheet == nil {
		return r.rect.String()
	}
	return quoteSheet(r.sheet.name) + "!" + r.rect.String()
}

// CellData returns the content of the top-left cell.
func (r Range) CellData() CellContent {
	if r.sheet == nil {
		return CellContent{}
	}
	return r.sheet.Cell(r.rect.Top, r.rect.Left)
}

// SetValue stores v in every cell of the range.
func (r Range) SetValue(v any) error {
	if r.sheet == nil {
		return rangeErrorf("range %s has no sheet", r.rect)
	}
	for row := r.rect.Top; row <= r.rect.Bottom; row++ {
		for col := r.rect.Left; col <= r.rect.Right; col++ {
			if err := r.sheet.SetValue(row, col, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ClearContents blanks every cell of the range, keeping styles.
func (r Range) ClearContents() {
	if r.sheet == nil {
		return
	}
	for row := r.rect.Top; row <= r.rect.Bottom; row++ {
		for col := r.rect.Left; col <= r.rect.Right; col++ {
			r.sheet.Clear(row, col)
		}
	}
}

// Merge merges the range into one region.
func (r Range) Merge() error {
	if r.sheet == nil {
		return rangeErrorf("range %s has no sheet", r.rect)
	}
	return r.sheet.Merge(r.rect)
}

// IsMerged reports whether the range is exactly one merged region.
func (r Range) IsMerged() bool {
	if r.sheet == nil {
		return false
	}
	region, ok := r.sheet.MergedRegionAt(r.rect.Top, r.rect.Left)
	return ok && region == r.rect
}

// Paste copies the range to dst with every attribute and no arithmetic.
// It is PasteSpecial(dst, PasteAll, OpNone, false, false).
func (r Range) Paste(dst Range) (Range, error) {
	return r.PasteSpecial(dst, PasteAll, OpNone, false, false)
}

// PasteSpecial copies the range to dst. dst is either a single anchor cell or a rect
// whose size decides how many whole copies of the source are tiled. It returns the
// range actually written.
func (r Range) PasteSpecial(dst Range, pt PasteType, op PasteOperation, skipBlank, transpose bool) (Range, error) {
	req := PasteRequest{
		Source:      r,
		Destination: dst,
		Type:        pt,
		Operation:   op,
		SkipBlank:   skipBlank,
		Transpose:   transpose,
	}
	if r.sheet == nil {
		return Range{}, &PasteError{Phase: phaseValidating.String(), Err: rangeErrorf("source %s has no sheet", r.rect)}
	}
	return r.sheet.book.Paste(req)
}
