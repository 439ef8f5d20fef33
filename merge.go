package xlpaste

import (
	"errors"
	"fmt"
	"sort"
)

// MergeRegistry records the merged regions of one sheet. Each region maps to its
// anchor cell (the top-left), which holds the visible content of the region.
// Regions never overlap.
//
// A MergeRegistry is owned by its Sheet and guarded by the sheet's lock.
type MergeRegistry struct {
	regions map[Rect]CellRef
	bounds  Rect
}

// NewMergeRegistry creates an empty registry whose regions must fit inside bounds.
func NewMergeRegistry(bounds Rect) *MergeRegistry {
	return &MergeRegistry{
		regions: make(map[Rect]CellRef),
		bounds:  bounds,
	}
}

// Len returns the number of merged regions.
func (m *MergeRegistry) Len() int { return len(m.regions) }

// All returns every region, sorted top-to-bottom then left-to-right.
func (m *MergeRegistry) All() []Rect {
	out := make([]Rect, 0, len(m.regions))
	for r := range m.regions {
		out = append(out, r)
	}
	sortRects(out)
	return out
}

// Intersecting returns the regions sharing at least one cell with r.
func (m *MergeRegistry) Intersecting(r Rect) []Rect {
	var out []Rect
	for region := range m.regions {
		if Intersects(region, r) {
			out = append(out, region)
		}
	}
	sortRects(out)
	return out
}

// Find returns the region containing the cell at row, col.
func (m *MergeRegistry) Find(row, col int) (Rect, bool) {
	for region := range m.regions {
		if region.Contains(row, col) {
			return region, true
		}
	}
	return Rect{}, false
}

// Anchor returns the anchor cell recorded for region.
func (m *MergeRegistry) Anchor(region Rect) (CellRef, bool) {
	a, ok := m.regions[region]
	return a, ok
}

// Add registers a new merged region. It fails with ErrMergeConflict when the region
// overlaps an existing one, and with ErrInvalidRange when it is a single cell or
// leaves the sheet.
func (m *MergeRegistry) Add(region Rect) error {
	region, err := Normalize(region)
	if err != nil {
		return err
	}
	if region.IsCell() {
		return rangeErrorf("cannot merge single cell %s", region)
	}
	if !m.bounds.ContainsRect(region) {
		return rangeErrorf("merge %s outside sheet bounds %s", region, m.bounds)
	}
	if conflicts := m.Intersecting(region); len(conflicts) > 0 {
		return fmt.Errorf("%w: %s overlaps %s", ErrMergeConflict, region, conflicts[0])
	}
	m.regions[region] = NewCellRef("", region.Top, region.Left)
	return nil
}

// Remove unregisters region. It reports whether the region existed.
func (m *MergeRegistry) Remove(region Rect) bool {
	if _, ok := m.regions[region]; !ok {
		return false
	}
	delete(m.regions, region)
	return true
}

// RemoveIntersecting unregisters every region sharing a cell with r and returns them.
func (m *MergeRegistry) RemoveIntersecting(r Rect) []Rect {
	removed := m.Intersecting(r)
	for _, region := range removed {
		delete(m.regions, region)
	}
	return removed
}

// replace adds region after removing anything it conflicts with.
func (m *MergeRegistry) replace(region Rect) ([]Rect, error) {
	err := m.Add(region)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, ErrMergeConflict) {
		return nil, err
	}
	removed := m.RemoveIntersecting(region)
	return removed, m.Add(region)
}

func sortRects(rs []Rect) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Top != rs[j].Top {
			return rs[i].Top < rs[j].Top
		}
		return rs[i].Left < rs[j].Left
	})
}
