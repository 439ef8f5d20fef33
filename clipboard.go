package xlpaste

import "sync"

// ActiveRanges tracks the selected rect of each sheet.
type ActiveRanges struct {
	mu     sync.RWMutex
	ranges map[*Sheet]Rect
}

// NewActiveRanges creates an empty selection set.
func NewActiveRanges() *ActiveRanges {
	return &ActiveRanges{ranges: make(map[*Sheet]Rect)}
}

// Set makes r the selection of its sheet.
func (a *ActiveRanges) Set(r Range) error {
	if r.sheet == nil {
		return rangeErrorf("range %s has no sheet", r.rect)
	}
	rect, err := Normalize(r.rect)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ranges[r.sheet] = rect
	return nil
}

// Get returns the selection of s.
func (a *ActiveRanges) Get(s *Sheet) (Range, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rect, ok := a.ranges[s]
	if !ok {
		return Range{}, false
	}
	return Range{sheet: s, rect: rect}, true
}

// Contains reports whether the cell at row, col of s is selected.
func (a *ActiveRanges) Contains(s *Sheet, row, col int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rect, ok := a.ranges[s]
	return ok && rect.Contains(row, col)
}

// ContainsRect reports whether r lies entirely inside the selection of s.
func (a *ActiveRanges) ContainsRect(s *Sheet, r Rect) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rect, ok := a.ranges[s]
	return ok && rect.ContainsRect(r)
}

// Clipboard remembers a copied range. The range is read when pasted, not when copied.
type Clipboard struct {
	mu     sync.Mutex
	source Range
	full   bool
}

// Copy records src as the clipboard source.
func (c *Clipboard) Copy(src Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source, c.full = src, true
}

// CopyActive copies the selection of s.
func (c *Clipboard) CopyActive(a *ActiveRanges, s *Sheet) error {
	src, ok := a.Get(s)
	if !ok {
		return rangeErrorf("sheet %q has no selection", s.Name())
	}
	c.Copy(src)
	return nil
}

// Source returns the copied range.
func (c *Clipboard) Source() (Range, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source, c.full
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source, c.full = Range{}, false
}

// Paste pastes the copied range onto dst with every attribute.
func (c *Clipboard) Paste(dst Range) (Range, error) {
	return c.PasteSpecial(dst, PasteAll, OpNone, false, false)
}

// PasteSpecial pastes the copied range onto dst. It fails with ErrEmptyClipboard
// when nothing was copied.
func (c *Clipboard) PasteSpecial(dst Range, pt PasteType, op PasteOperation, skipBlank, transpose bool) (Range, error) {
	src, ok := c.Source()
	if !ok {
		return Range{}, ErrEmptyClipboard
	}
	return src.PasteSpecial(dst, pt, op, skipBlank, transpose)
}

// PasteActive pastes the copied range onto the selection of s. The selection then
// becomes the range written, as after a paste in a spreadsheet UI.
func (c *Clipboard) PasteActive(a *ActiveRanges, s *Sheet) (Range, error) {
	dst, ok := a.Get(s)
	if !ok {
		return Range{}, rangeErrorf("sheet %q has no selection", s.Name())
	}
	res, err := c.Paste(dst)
	if err != nil {
		return Range{}, err
	}
	return res, a.Set(res)
}
