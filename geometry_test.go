package xlpaste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	r, err := Normalize(NewRect(12, 9, 10, 7))
	require.NoError(t, err)
	assert.Equal(t, NewRect(10, 7, 12, 9), r)

	r, err = Normalize(CellRect(3, 4))
	require.NoError(t, err)
	assert.True(t, r.IsCell())

	_, err = Normalize(NewRect(-1, 0, 2, 2))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestIntersects(t *testing.T) {
	src := NewRect(10, 7, 12, 9)
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"same", src, true},
		{"inside", CellRect(11, 8), true},
		{"corner overlap", NewRect(12, 9, 14, 11), true},
		{"containing", NewRect(8, 6, 13, 11), true},
		{"adjacent right", NewRect(10, 10, 12, 12), false},
		{"adjacent below", NewRect(13, 7, 15, 9), false},
		{"far away", NewRect(0, 0, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersects(src, tt.other))
			assert.Equal(t, tt.want, Intersects(tt.other, src))
		})
	}
}

func TestIntersection(t *testing.T) {
	got, ok := Intersection(NewRect(0, 0, 4, 4), NewRect(2, 3, 8, 8))
	require.True(t, ok)
	assert.Equal(t, NewRect(2, 3, 4, 4), got)

	_, ok = Intersection(NewRect(0, 0, 1, 1), NewRect(2, 2, 3, 3))
	assert.False(t, ok)
}

func TestRectContains(t *testing.T) {
	r := NewRect(2, 2, 4, 5)
	assert.True(t, r.Contains(2, 2))
	assert.True(t, r.Contains(4, 5))
	assert.False(t, r.Contains(5, 5))
	assert.True(t, r.ContainsRect(NewRect(3, 3, 4, 4)))
	assert.False(t, r.ContainsRect(NewRect(3, 3, 4, 6)))
	assert.Equal(t, NewRect(4, 3, 6, 6), r.Offset(2, 1))
}

func TestTileCount(t *testing.T) {
	assert.Equal(t, 1, TileCount(3, 1))
	assert.Equal(t, 1, TileCount(3, 3))
	assert.Equal(t, 1, TileCount(3, 5))
	assert.Equal(t, 2, TileCount(3, 6))
	assert.Equal(t, 2, TileCount(3, 7))
	assert.Equal(t, 1, TileCount(0, 7))
}

func TestTileCount_FloorWithMinimumOne(t *testing.T) {
	for src := 1; src <= 6; src++ {
		for dst := 1; dst <= 20; dst++ {
			n := TileCount(src, dst)
			assert.GreaterOrEqual(t, n, 1, "src=%d dst=%d", src, dst)
			assert.Equal(t, max(1, dst/src), n, "src=%d dst=%d", src, dst)
			if dst >= src {
				assert.LessOrEqual(t, n*src, dst, "whole tiles only: src=%d dst=%d", src, dst)
				assert.Greater(t, (n+1)*src, dst, "largest whole count: src=%d dst=%d", src, dst)
			}
		}
	}
}

func TestEffectiveDestination(t *testing.T) {
	src := NewRect(10, 7, 12, 9)

	t.Run("single anchor", func(t *testing.T) {
		tl := EffectiveDestination(NewCellRef("", 9, 6), src, nil, false)
		assert.Equal(t, NewRect(9, 6, 11, 8), tl.Rect)
		assert.Equal(t, 1, tl.RowTiles)
		assert.Equal(t, 1, tl.ColTiles)
	})

	t.Run("single cell explicit", func(t *testing.T) {
		one := CellRect(0, 0)
		tl := EffectiveDestination(NewCellRef("", 0, 0), src, &one, false)
		assert.Equal(t, NewRect(0, 0, 2, 2), tl.Rect)
	})

	t.Run("repeat", func(t *testing.T) {
		dst := NewRect(10, 11, 15, 16)
		tl := EffectiveDestination(NewCellRef("", 10, 11), src, &dst, false)
		assert.Equal(t, 2, tl.RowTiles)
		assert.Equal(t, 2, tl.ColTiles)
		assert.Equal(t, dst, tl.Rect)
	})

	t.Run("partial tiles dropped", func(t *testing.T) {
		dst := NewRect(0, 0, 7, 1)
		tl := EffectiveDestination(NewCellRef("", 0, 0), src, &dst, false)
		assert.Equal(t, 2, tl.RowTiles)
		assert.Equal(t, 1, tl.ColTiles)
		assert.Equal(t, NewRect(0, 0, 5, 2), tl.Rect)
	})

	t.Run("transpose swaps axes", func(t *testing.T) {
		wide := NewRect(0, 0, 0, 2) // 1 row x 3 cols
		dst := NewRect(5, 5, 10, 6) // 6 rows x 2 cols
		tl := EffectiveDestination(NewCellRef("", 5, 5), wide, &dst, true)
		assert.Equal(t, 3, tl.UnitRows)
		assert.Equal(t, 1, tl.UnitCols)
		assert.Equal(t, 2, tl.RowTiles)
		assert.Equal(t, 2, tl.ColTiles)
		assert.Equal(t, NewRect(5, 5, 10, 6), tl.Rect)
	})

	t.Run("idempotent", func(t *testing.T) {
		dst := NewRect(0, 0, 8, 4)
		first := EffectiveDestination(NewCellRef("", 0, 0), src, &dst, false)
		again := EffectiveDestination(NewCellRef("", 0, 0), src, &first.Rect, false)
		assert.Equal(t, first, again)
	})
}

func TestTilingMapOffset(t *testing.T) {
	tl := EffectiveDestination(NewCellRef("", 0, 0), NewRect(0, 0, 1, 2), nil, false)
	r, c := tl.mapOffset(0, 0, 1, 2, false)
	assert.Equal(t, [2]int{1, 2}, [2]int{r, c})

	tl = EffectiveDestination(NewCellRef("", 0, 0), NewRect(0, 0, 1, 2), nil, true)
	r, c = tl.mapOffset(0, 0, 1, 2, true)
	assert.Equal(t, [2]int{2, 1}, [2]int{r, c})

	// a 1x3 region becomes 3x1 under transpose
	got := tl.mapRect(NewRect(0, 0, 0, 2), 0, 0, true)
	assert.Equal(t, NewRect(0, 0, 2, 0), got)
}
