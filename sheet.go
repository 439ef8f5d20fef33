package xlpaste

import (
	"sort"
	"strings"
	"sync"
)

// Sheet is an addressable grid of cell contents plus the sheet's merged regions.
// All exported methods are safe for concurrent use; a paste holds the sheet lock
// for its whole write phase so readers never see a half-written destination.
type Sheet struct {
	name   string
	index  int
	book   *Book
	bounds Rect

	mu      sync.RWMutex
	rows    map[int]*rowData
	merges  *MergeRegistry
	touched map[[2]int]struct{} // cells written since the sheet was loaded
}

// rowData holds the cells of a single row.
type rowData struct {
	cells map[int]CellContent
}

func newSheet(b *Book, name string, index, maxRows, maxCols int) *Sheet {
	bounds := NewRect(0, 0, maxRows-1, maxCols-1)
	return &Sheet{
		name:    name,
		index:   index,
		book:    b,
		bounds:  bounds,
		rows:    make(map[int]*rowData),
		merges:  NewMergeRegistry(bounds),
		touched: make(map[[2]int]struct{}),
	}
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Book returns the workbook owning the sheet.
func (s *Sheet) Book() *Book { return s.book }

// Bounds returns the rect of every addressable cell.
func (s *Sheet) Bounds() Rect { return s.bounds }

// Range returns the range with the given corners on this sheet.
func (s *Sheet) Range(top, left, bottom, right int) Range {
	return Range{sheet: s, rect: NewRect(top, left, bottom, right)}
}

// CellRange returns the single-cell range at row, col.
func (s *Sheet) CellRange(row, col int) Range {
	return Range{sheet: s, rect: CellRect(row, col)}
}

// Cell returns the content at row, col. Unset cells are blank.
func (s *Sheet) Cell(row, col int) CellContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cell(row, col)
}

// SetCell replaces the content at row, col.
func (s *Sheet) SetCell(row, col int, c CellContent) error {
	if !s.bounds.Contains(row, col) {
		return rangeErrorf("cell %s outside sheet %q", NewCellRef("", row, col).CellName(), s.name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCell(row, col, c)
	return nil
}

// SetValue stores v at row, col, keeping the cell's style. Strings starting with "="
// are stored as formulas.
func (s *Sheet) SetValue(row, col int, v any) error {
	c := ValueCell(v)
	c.StyleID = s.Cell(row, col).StyleID
	return s.SetCell(row, col, c)
}

// SetFormula stores a formula at row, col, keeping the cell's style.
func (s *Sheet) SetFormula(row, col int, formula string) error {
	c := FormulaCell(formula)
	c.StyleID = s.Cell(row, col).StyleID
	return s.SetCell(row, col, c)
}

// SetStyle sets the opaque style attribute at row, col.
func (s *Sheet) SetStyle(row, col, styleID int) error {
	c := s.Cell(row, col)
	c.StyleID = styleID
	return s.SetCell(row, col, c)
}

// Clear removes the content at row, col while preserving its style.
func (s *Sheet) Clear(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	style := s.cell(row, col).StyleID
	s.setCell(row, col, CellContent{StyleID: style})
}

// Merge registers r as a merged region. The anchor keeps its content; every other cell
// of the region is cleared. Regions overlapping r must be unmerged first.
func (s *Sheet) Merge(r Rect) error {
	r, err := Normalize(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.merges.Add(r); err != nil {
		return err
	}
	for row := r.Top; row <= r.Bottom; row++ {
		for col := r.Left; col <= r.Right; col++ {
			if row == r.Top && col == r.Left {
				continue
			}
			style := s.cell(row, col).StyleID
			s.setCell(row, col, CellContent{StyleID: style})
		}
	}
	return nil
}

// Unmerge removes every merged region intersecting r and returns them.
func (s *Sheet) Unmerge(r Rect) []Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merges.RemoveIntersecting(r)
}

// MergedRegions returns every merged region of the sheet.
func (s *Sheet) MergedRegions() []Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merges.All()
}

// MergedRegionAt returns the merged region containing row, col.
func (s *Sheet) MergedRegionAt(row, col int) (Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merges.Find(row, col)
}

// Merges returns a copy of the sheet's merge registry.
func (s *Sheet) Merges() *MergeRegistry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := NewMergeRegistry(s.bounds)
	for r, a := range s.merges.regions {
		cp.regions[r] = a
	}
	return cp
}

// UsedRect returns the smallest rect holding every non-blank cell and merged region.
func (s *Sheet) UsedRect() (Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	used := Rect{Top: -1}
	grow := func(r Rect) {
		if used.Top < 0 {
			used = r
			return
		}
		used.Top = min(used.Top, r.Top)
		used.Left = min(used.Left, r.Left)
		used.Bottom = max(used.Bottom, r.Bottom)
		used.Right = max(used.Right, r.Right)
	}
	for rowIdx, rd := range s.rows {
		for colIdx, c := range rd.cells {
			if !IsBlank(c) {
				grow(CellRect(rowIdx, colIdx))
			}
		}
	}
	for r := range s.merges.regions {
		grow(r)
	}
	if used.Top < 0 {
		return Rect{}, false
	}
	return used, true
}

// cell reads without locking.
func (s *Sheet) cell(row, col int) CellContent {
	rd, ok := s.rows[row]
	if !ok {
		return CellContent{}
	}
	return rd.cells[col]
}

// setCell writes without locking.
func (s *Sheet) setCell(row, col int, c CellContent) {
	rd, ok := s.rows[row]
	if !ok {
		rd = &rowData{cells: make(map[int]CellContent)}
		s.rows[row] = rd
	}
	if c.Type == CellBlank && c.StyleID == 0 {
		delete(rd.cells, col)
	} else {
		rd.cells[col] = c
	}
	s.touched[[2]int{row, col}] = struct{}{}
}

// formulaCells returns the coordinates of every formula cell, row-major.
func (s *Sheet) formulaCells() [][2]int {
	var out [][2]int
	for rowIdx, rd := range s.rows {
		for colIdx, c := range rd.cells {
			if c.IsFormula() {
				out = append(out, [2]int{rowIdx, colIdx})
			}
		}
	}
	sortCoords(out)
	return out
}

// setCached stores a recalculated formula result. A changed result marks the cell
// touched so the next save writes it.
func (s *Sheet) setCached(row, col int, v any) {
	rd, ok := s.rows[row]
	if !ok {
		return
	}
	c, ok := rd.cells[col]
	if !ok || !c.IsFormula() || c.Cached == v {
		return
	}
	c.Cached = v
	rd.cells[col] = c
	s.touched[[2]int{row, col}] = struct{}{}
}

func sortCoords(cs [][2]int) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i][0] != cs[j][0] {
			return cs[i][0] < cs[j][0]
		}
		return cs[i][1] < cs[j][1]
	})
}

// sheetKey normalizes sheet names for lookup; sheet names are case-insensitive.
func sheetKey(name string) string {
	return strings.ToLower(name)
}
