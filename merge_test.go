package xlpaste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRegistry_AddAndFind(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 99, 99))
	require.NoError(t, m.Add(NewRect(10, 7, 10, 9)))
	require.NoError(t, m.Add(NewRect(12, 8, 11, 8))) // corners out of order

	assert.Equal(t, 2, m.Len())

	region, ok := m.Find(10, 8)
	require.True(t, ok)
	assert.Equal(t, NewRect(10, 7, 10, 9), region)

	region, ok = m.Find(12, 8)
	require.True(t, ok)
	assert.Equal(t, NewRect(11, 8, 12, 8), region)

	_, ok = m.Find(11, 7)
	assert.False(t, ok)

	anchor, ok := m.Anchor(NewRect(11, 8, 12, 8))
	require.True(t, ok)
	assert.Equal(t, 11, anchor.Row)
	assert.Equal(t, 8, anchor.Col)
}

func TestMergeRegistry_AddConflict(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 99, 99))
	require.NoError(t, m.Add(NewRect(0, 0, 1, 1)))

	err := m.Add(NewRect(1, 1, 2, 2))
	assert.ErrorIs(t, err, ErrMergeConflict)
	assert.Equal(t, 1, m.Len())

	// touching edges is not overlapping
	assert.NoError(t, m.Add(NewRect(0, 2, 1, 3)))
}

func TestMergeRegistry_AddInvalid(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 9, 9))
	assert.ErrorIs(t, m.Add(CellRect(1, 1)), ErrInvalidRange)
	assert.ErrorIs(t, m.Add(NewRect(8, 8, 10, 9)), ErrInvalidRange)
	assert.ErrorIs(t, m.Add(NewRect(-1, 0, 1, 1)), ErrInvalidRange)
	assert.Zero(t, m.Len())
}

func TestMergeRegistry_Intersecting(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 99, 99))
	require.NoError(t, m.Add(NewRect(5, 5, 6, 6)))
	require.NoError(t, m.Add(NewRect(0, 0, 0, 3)))
	require.NoError(t, m.Add(NewRect(20, 20, 21, 21)))

	got := m.Intersecting(NewRect(0, 2, 5, 5))
	assert.Equal(t, []Rect{NewRect(0, 0, 0, 3), NewRect(5, 5, 6, 6)}, got)
}

func TestMergeRegistry_RemoveIntersecting(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 99, 99))
	require.NoError(t, m.Add(NewRect(5, 5, 6, 6)))
	require.NoError(t, m.Add(NewRect(0, 0, 0, 3)))

	removed := m.RemoveIntersecting(NewRect(6, 6, 10, 10))
	assert.Equal(t, []Rect{NewRect(5, 5, 6, 6)}, removed)
	assert.Equal(t, []Rect{NewRect(0, 0, 0, 3)}, m.All())

	assert.True(t, m.Remove(NewRect(0, 0, 0, 3)))
	assert.False(t, m.Remove(NewRect(0, 0, 0, 3)))
}

func TestMergeRegistry_Replace(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 99, 99))
	require.NoError(t, m.Add(NewRect(0, 0, 1, 1)))
	require.NoError(t, m.Add(NewRect(0, 3, 0, 4)))

	removed, err := m.replace(NewRect(0, 1, 0, 3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []Rect{NewRect(0, 0, 1, 1), NewRect(0, 3, 0, 4)}, removed)
	assert.Equal(t, []Rect{NewRect(0, 1, 0, 3)}, m.All())

	removed, err = m.replace(NewRect(5, 5, 6, 6))
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 2, m.Len())
}

func TestMergeRegistry_NoOverlapAfterReplace(t *testing.T) {
	m := NewMergeRegistry(NewRect(0, 0, 49, 49))
	regions := []Rect{
		NewRect(0, 0, 2, 2), NewRect(1, 1, 3, 3), NewRect(2, 0, 2, 5),
		NewRect(10, 10, 12, 10), NewRect(11, 9, 11, 11), NewRect(0, 4, 4, 4),
	}
	for _, r := range regions {
		_, err := m.replace(r)
		require.NoError(t, err)
	}
	all := m.All()
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, Intersects(all[i], all[j]), "%s overlaps %s", all[i], all[j])
		}
	}
}
