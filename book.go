package xlpaste

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
)

// Book is a workbook: an ordered set of sheets sharing one formula engine.
type Book struct {
	opts    *Options
	shifter ReferenceShifter
	engine  Recalculator

	mu     sync.RWMutex
	sheets []*Sheet
	byName map[string]*Sheet

	file  *excelize.File // backing file when loaded from xlsx
	fresh bool           // file was created by sync, not loaded
}

// NewBook creates an empty workbook.
func NewBook(opts ...Option) *Book {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	b := &Book{
		opts:    o,
		shifter: o.shifter,
		engine:  o.recalculator,
		byName:  make(map[string]*Sheet),
	}
	if b.shifter == nil {
		b.shifter = &A1Shifter{MaxRows: o.maxRows, MaxCols: o.maxCols}
	}
	if b.engine == nil {
		b.engine = NewFormulaEngine()
	}
	return b
}

// Logger returns the logger paste operations report to.
func (b *Book) Logger() *log.Logger { return b.opts.logger }

// AddSheet appends a new empty sheet.
func (b *Book) AddSheet(name string) (*Sheet, error) {
	if name == "" {
		return nil, fmt.Errorf("empty sheet name")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.byName[sheetKey(name)]; ok {
		return nil, fmt.Errorf("sheet %q already exists", name)
	}
	s := newSheet(b, name, len(b.sheets), b.opts.maxRows, b.opts.maxCols)
	b.sheets = append(b.sheets, s)
	b.byName[sheetKey(name)] = s
	return s, nil
}

// Sheet returns the sheet with the given name, or nil.
func (b *Book) Sheet(name string) *Sheet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.byName[sheetKey(name)]
}

// Sheets returns the sheets in workbook order.
func (b *Book) Sheets() []*Sheet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Sheet, len(b.sheets))
	copy(out, b.sheets)
	return out
}

// Range returns a range on the named sheet. A missing sheet yields a range that
// fails validation when pasted.
func (b *Book) Range(sheet string, top, left, bottom, right int) Range {
	return Range{sheet: b.Sheet(sheet), rect: NewRect(top, left, bottom, right)}
}

// RangeRef parses a reference such as "Sheet1!H11:J13". Without a sheet prefix the
// first sheet is used.
func (b *Book) RangeRef(ref string) (Range, error) {
	sheetName, rect, err := ParseRect(ref)
	if err != nil {
		return Range{}, err
	}
	var s *Sheet
	if sheetName == "" {
		sheets := b.Sheets()
		if len(sheets) == 0 {
			return Range{}, fmt.Errorf("workbook has no sheets")
		}
		s = sheets[0]
	} else if s = b.Sheet(sheetName); s == nil {
		return Range{}, fmt.Errorf("sheet %q not found", sheetName)
	}
	return Range{sheet: s, rect: rect}, nil
}

// Recalculate runs the formula engine over the whole workbook.
func (b *Book) Recalculate() error {
	return b.engine.Recalculate(b, Range{})
}
