package xlpaste

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// OpenBook opens an xlsx file and loads every sheet into a Book.
func OpenBook(path string, opts ...Option) (*Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	b, err := NewBookFromFile(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return b, nil
}

// ReadBook loads a workbook from an xlsx stream.
func ReadBook(r io.Reader, opts ...Option) (*Book, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	b, err := NewBookFromFile(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return b, nil
}

// NewBookFromFile loads the sheets of f into a Book. The Book keeps f and writes
// its changes back into it on Write or SaveAs.
func NewBookFromFile(f *excelize.File, opts ...Option) (*Book, error) {
	b := NewBook(opts...)
	b.file = f
	for _, name := range f.GetSheetList() {
		s, err := b.AddSheet(name)
		if err != nil {
			return nil, err
		}
		if err := readSheet(f, s); err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
	}
	return b, nil
}

// readSheet copies values, formulas, style IDs and merged regions of one sheet.
func readSheet(f *excelize.File, s *Sheet) error {
	rows, err := f.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			if !s.bounds.Contains(rowIdx, colIdx) {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			c, err := readCell(f, s.name, cellName, raw)
			if err != nil {
				return fmt.Errorf("read cell %s: %w", cellName, err)
			}
			s.setCell(rowIdx, colIdx, c)
		}
	}

	merges, err := f.GetMergeCells(s.name)
	if err != nil {
		return fmt.Errorf("read merged cells: %w", err)
	}
	for _, mc := range merges {
		_, r, err := ParseRect(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return fmt.Errorf("merged cell %s:%s: %w", mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
		if err := s.merges.Add(r); err != nil {
			return fmt.Errorf("merged cell %s: %w", r, err)
		}
	}

	clear(s.touched)
	return nil
}

func readCell(f *excelize.File, sheet, cellName, raw string) (CellContent, error) {
	var c CellContent

	styleID, err := f.GetCellStyle(sheet, cellName)
	if err != nil {
		return c, err
	}
	c.StyleID = styleID

	formula, err := f.GetCellFormula(sheet, cellName)
	if err != nil {
		return c, err
	}
	if formula != "" {
		c.Type = CellFormula
		c.Formula = formula
		if raw != "" {
			c.Cached = rawResult(raw)
		}
		return c, nil
	}

	if raw == "" {
		return c, nil
	}
	cellType, err := f.GetCellType(sheet, cellName)
	if err != nil {
		return c, err
	}
	switch cellType {
	case excelize.CellTypeBool:
		c.Type, c.Value = CellBoolean, raw == "1" || raw == "TRUE"
	case excelize.CellTypeError:
		c.Type, c.Value = CellError, raw
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		c.Type, c.Value = CellString, raw
	default:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Type, c.Value = CellNumber, n
		} else {
			c.Type, c.Value = CellString, raw
		}
	}
	return c, nil
}

// rawResult interprets the stored result of a formula cell.
func rawResult(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if len(raw) > 1 && raw[0] == '#' {
		return ErrorValue(raw)
	}
	return raw
}

// Write syncs the workbook into its xlsx file and writes it to w.
func (b *Book) Write(w io.Writer) error {
	if err := b.sync(); err != nil {
		return err
	}
	if err := b.file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs syncs the workbook into its xlsx file and saves it at path.
func (b *Book) SaveAs(path string) error {
	if err := b.sync(); err != nil {
		return err
	}
	if err := b.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// Close releases the backing xlsx file.
func (b *Book) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}

// sync writes every cell changed since loading, and every sheet's merged regions,
// into the backing file. A book built in memory gets a new file.
func (b *Book) sync() error {
	b.mu.Lock()
	if b.file == nil {
		b.file = excelize.NewFile()
		b.fresh = true
	}
	f, fresh := b.file, b.fresh
	b.mu.Unlock()

	sheets := b.Sheets()
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %q: %w", s.name, err)
		}
	}
	if fresh && len(sheets) > 0 {
		if err := dropDefaultSheet(f, sheets); err != nil {
			return err
		}
	}

	for _, s := range sheets {
		if err := syncSheet(f, s); err != nil {
			return fmt.Errorf("write sheet %q: %w", s.name, err)
		}
	}
	return nil
}

// dropDefaultSheet removes the placeholder sheet of a new file unless the book uses it.
func dropDefaultSheet(f *excelize.File, sheets []*Sheet) error {
	const placeholder = "Sheet1"
	for _, s := range sheets {
		if sheetKey(s.name) == sheetKey(placeholder) {
			return nil
		}
	}
	idx, err := f.GetSheetIndex(sheets[0].name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet(placeholder); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	idx, err = f.GetSheetIndex(sheets[0].name)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func syncSheet(f *excelize.File, s *Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coords := make([][2]int, 0, len(s.touched))
	for rc := range s.touched {
		coords = append(coords, rc)
	}
	sortCoords(coords)

	for _, rc := range coords {
		cellName, err := excelize.CoordinatesToCellName(rc[1]+1, rc[0]+1)
		if err != nil {
			return err
		}
		if err := writeCell(f, s.name, cellName, s.cell(rc[0], rc[1])); err != nil {
			return fmt.Errorf("cell %s: %w", cellName, err)
		}
	}

	existing, err := f.GetMergeCells(s.name)
	if err != nil {
		return fmt.Errorf("read merged cells: %w", err)
	}
	for _, mc := range existing {
		if err := f.UnmergeCell(s.name, mc.GetStartAxis(), mc.GetEndAxis()); err != nil {
			return fmt.Errorf("unmerge %s:%s: %w", mc.GetStartAxis(), mc.GetEndAxis(), err)
		}
	}
	for _, r := range s.merges.All() {
		start := NewCellRef("", r.Top, r.Left).CellName()
		end := NewCellRef("", r.Bottom, r.Right).CellName()
		if err := f.MergeCell(s.name, start, end); err != nil {
			return fmt.Errorf("merge %s: %w", r, err)
		}
	}

	clear(s.touched)
	return nil
}

func writeCell(f *excelize.File, sheet, cellName string, c CellContent) error {
	var err error
	switch c.Type {
	case CellFormula:
		var cached any
		if c.Cached != nil {
			cached = formatValue(c.Cached)
			if n, ok := c.Cached.(float64); ok {
				cached = n
			}
		}
		if err = f.SetCellValue(sheet, cellName, cached); err == nil {
			err = f.SetCellFormula(sheet, cellName, c.Formula)
		}
	case CellBlank:
		if err = f.SetCellValue(sheet, cellName, nil); err == nil {
			err = f.SetCellFormula(sheet, cellName, "")
		}
	default:
		if err = f.SetCellValue(sheet, cellName, c.Value); err == nil {
			err = f.SetCellFormula(sheet, cellName, "")
		}
	}
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cellName, cellName, c.StyleID)
}
