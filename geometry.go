package xlpaste

// Normalize returns r with its corners ordered so that Top <= Bottom and Left <= Right.
// Negative coordinates are rejected with ErrInvalidRange.
func Normalize(r Rect) (Rect, error) {
	if r.Top < 0 || r.Left < 0 || r.Bottom < 0 || r.Right < 0 {
		return Rect{}, rangeErrorf("negative coordinate in (%d,%d,%d,%d)", r.Top, r.Left, r.Bottom, r.Right)
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	return r, nil
}

// Intersects reports whether a and b share at least one cell.
// Rects that only touch along an edge do not intersect.
func Intersects(a, b Rect) bool {
	return a.Left <= b.Right && b.Left <= a.Right &&
		a.Top <= b.Bottom && b.Top <= a.Bottom
}

// Intersection returns the overlap of a and b, and false when they are disjoint.
func Intersection(a, b Rect) (Rect, bool) {
	if !Intersects(a, b) {
		return Rect{}, false
	}
	return Rect{
		Top:    max(a.Top, b.Top),
		Left:   max(a.Left, b.Left),
		Bottom: min(a.Bottom, b.Bottom),
		Right:  min(a.Right, b.Right),
	}, true
}

// Contains reports whether the cell at row, col lies inside r.
func (r Rect) Contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return r.Contains(other.Top, other.Left) && r.Contains(other.Bottom, other.Right)
}

// Offset moves r by dRow rows and dCol columns.
func (r Rect) Offset(dRow, dCol int) Rect {
	return Rect{Top: r.Top + dRow, Left: r.Left + dCol, Bottom: r.Bottom + dRow, Right: r.Right + dCol}
}

// TileCount returns how many whole copies of sourceSize fit into destSize, never less than one.
func TileCount(sourceSize, destSize int) int {
	if sourceSize <= 0 {
		return 1
	}
	return max(1, destSize/sourceSize)
}

// Tiling describes the whole-tile layout of a paste destination.
type Tiling struct {
	Rect     Rect // full destination covered by all tiles
	UnitRows int  // rows of one tile in destination orientation
	UnitCols int  // columns of one tile in destination orientation
	RowTiles int
	ColTiles int
}

// EffectiveDestination sizes the destination of a paste.
//
// The anchor is the top-left of the destination. When explicit is a multi-cell rect its
// size drives the tile count per axis; a nil or single-cell explicit rect yields one tile.
// Under transpose the source's column count becomes the tile's row count and vice versa.
// Only whole tiles are produced, so the result can extend past the explicit rect.
func EffectiveDestination(anchor CellRef, source Rect, explicit *Rect, transpose bool) Tiling {
	unitRows, unitCols := source.Rows(), source.Cols()
	if transpose {
		unitRows, unitCols = unitCols, unitRows
	}

	rowTiles, colTiles := 1, 1
	if explicit != nil && !explicit.IsCell() {
		rowTiles = TileCount(unitRows, explicit.Rows())
		colTiles = TileCount(unitCols, explicit.Cols())
	}

	return Tiling{
		Rect: Rect{
			Top:    anchor.Row,
			Left:   anchor.Col,
			Bottom: anchor.Row + rowTiles*unitRows - 1,
			Right:  anchor.Col + colTiles*unitCols - 1,
		},
		UnitRows: unitRows,
		UnitCols: unitCols,
		RowTiles: rowTiles,
		ColTiles: colTiles,
	}
}

// mapOffset maps a source-relative offset to a destination-relative offset inside
// tile (tileRow, tileCol) of t.
func (t Tiling) mapOffset(tileRow, tileCol, dr, dc int, transpose bool) (int, int) {
	if transpose {
		return tileRow*t.UnitRows + dc, tileCol*t.UnitCols + dr
	}
	return tileRow*t.UnitRows + dr, tileCol*t.UnitCols + dc
}

// mapRect maps a source-relative rect (offsets from the source top-left) into the
// destination sheet for one tile.
func (t Tiling) mapRect(rel Rect, tileRow, tileCol int, transpose bool) Rect {
	top, left := t.mapOffset(tileRow, tileCol, rel.Top, rel.Left, transpose)
	bottom, right := t.mapOffset(tileRow, tileCol, rel.Bottom, rel.Right, transpose)
	return Rect{
		Top:    t.Rect.Top + top,
		Left:   t.Rect.Left + left,
		Bottom: t.Rect.Top + bottom,
		Right:  t.Rect.Left + right,
	}
}
