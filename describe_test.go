package xlpaste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	_, s, _ := newPasteBook(t)
	require.NoError(t, s.Merge(NewRect(10, 7, 10, 9)))
	require.NoError(t, s.SetFormula(10, 10, "=SUM(H11:J11)"))

	output := Describe(NewRange(s, NewRect(10, 7, 12, 10)))

	assert.Contains(t, output, "Sheet1!H11:K13 range (4x3)")
	assert.Contains(t, output, " H I J K\n")
	assert.Contains(t, output, "  11 1     1\n")
	assert.Contains(t, output, "  12 4 5 6  \n")
	assert.Contains(t, output, "  13 7 8 9  \n")
	assert.Contains(t, output, "Formulas:\n    K11: =SUM(H11:J11)\n")
	assert.Contains(t, output, "Merged:\n    H11:J11 (3x1)\n")
}

func TestDescribe_PlainRange(t *testing.T) {
	_, s, _ := newPasteBook(t)
	output := Describe(NewRange(s, NewRect(11, 8, 11, 8)))

	assert.Contains(t, output, "Sheet1!I12 range (1x1)")
	assert.NotContains(t, output, "Formulas:")
	assert.NotContains(t, output, "Merged:")
}

func TestDescribe_WideColumns(t *testing.T) {
	b := NewBook()
	s, err := b.AddSheet("Wide")
	require.NoError(t, err)
	require.NoError(t, s.SetValue(0, 0, "Quarterly"))
	require.NoError(t, s.SetValue(1, 0, 2.5))

	output := Describe(s.Range(0, 0, 1, 0))
	assert.Contains(t, output, " A        \n")
	assert.Contains(t, output, " 1 Quarterly\n")
	assert.Contains(t, output, " 2 2.5      \n")
}

func TestDescribe_NoSheet(t *testing.T) {
	assert.Equal(t, "H11:J13 range (3x3)\n", Describe(NewRange(nil, sourceRect)))
}
