package xlpaste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func styled(c CellContent, style int) CellContent {
	c.StyleID = style
	return c
}

func TestTransfer_PasteTypes(t *testing.T) {
	shifter := NewA1Shifter()
	src := styled(NumberCell(5), 7)
	dst := styled(NumberCell(1), 3)

	got, err := Transfer(src, dst, PasteAll, OpNone, 0, 0, shifter)
	require.NoError(t, err)
	assert.Equal(t, styled(NumberCell(5), 7), got)

	got, err = Transfer(src, dst, PasteFormulas, OpNone, 0, 0, shifter)
	require.NoError(t, err)
	assert.Equal(t, styled(NumberCell(5), 3), got)

	got, err = Transfer(src, dst, PasteValues, OpNone, 0, 0, shifter)
	require.NoError(t, err)
	assert.Equal(t, styled(NumberCell(5), 3), got)

	got, err = Transfer(src, dst, PasteFormats, OpNone, 0, 0, shifter)
	require.NoError(t, err)
	assert.Equal(t, styled(NumberCell(1), 7), got)

	got, err = Transfer(src, dst, PasteValuesAndFormats, OpNone, 0, 0, shifter)
	require.NoError(t, err)
	assert.Equal(t, styled(NumberCell(5), 7), got)
}

func TestTransfer_Formula(t *testing.T) {
	shifter := NewA1Shifter()
	src := FormulaCell("=A1+1")
	src.Cached = 3.0

	got, err := Transfer(src, CellContent{}, PasteAll, OpNone, 2, 1, shifter)
	require.NoError(t, err)
	assert.Equal(t, CellFormula, got.Type)
	assert.Equal(t, "B3+1", got.Formula)

	// value pastes take the cached result instead of the formula
	got, err = Transfer(src, CellContent{}, PasteValues, OpNone, 2, 1, shifter)
	require.NoError(t, err)
	assert.Equal(t, NumberCell(3), got)
	assert.False(t, got.IsFormula())
}

func TestTransfer_ValuesKeepTextResult(t *testing.T) {
	src := FormulaCell(`"="&A1`)
	src.Cached = "=A1"

	got, err := Transfer(src, CellContent{}, PasteValues, OpNone, 1, 0, NewA1Shifter())
	require.NoError(t, err)
	assert.Equal(t, StringCell("=A1"), got)
	assert.False(t, got.IsFormula())
}

func TestTransfer_RefOutOfRange(t *testing.T) {
	src := FormulaCell("A1*2")
	got, err := Transfer(src, styled(CellContent{}, 4), PasteFormulas, OpNone, -1, 0, NewA1Shifter())
	assert.ErrorIs(t, err, ErrRefOutOfRange)
	assert.Equal(t, CellError, got.Type)
	assert.Equal(t, ErrCodeRef, got.Value)
	assert.Equal(t, 4, got.StyleID)
}

func TestTransfer_Operations(t *testing.T) {
	tests := []struct {
		name string
		op   PasteOperation
		dst  CellContent
		src  CellContent
		want CellContent
	}{
		{"add", OpAdd, NumberCell(10), NumberCell(5), NumberCell(15)},
		{"subtract", OpSubtract, NumberCell(10), NumberCell(5), NumberCell(5)},
		{"multiply", OpMultiply, NumberCell(10), NumberCell(5), NumberCell(50)},
		{"divide", OpDivide, NumberCell(10), NumberCell(5), NumberCell(2)},
		{"blank destination reads zero", OpSubtract, CellContent{}, NumberCell(5), NumberCell(-5)},
		{"blank source reads zero", OpMultiply, NumberCell(4), CellContent{}, NumberCell(0)},
		{"divide by zero", OpDivide, NumberCell(1), NumberCell(0), ErrorCell(ErrCodeDiv0)},
		{"both blank", OpAdd, CellContent{}, CellContent{}, CellContent{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transfer(tt.src, tt.dst, PasteValues, tt.op, 0, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransfer_UnsupportedCombination(t *testing.T) {
	got, err := Transfer(NumberCell(5), StringCell("total"), PasteAll, OpAdd, 0, 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
	assert.Equal(t, NumberCell(5), got)

	got, err = Transfer(StringCell("x"), NumberCell(1), PasteAll, OpMultiply, 0, 0, nil)
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
	assert.Equal(t, StringCell("x"), got)

	got, err = Transfer(FormulaCell("A1"), NumberCell(1), PasteAll, OpAdd, 0, 0, NewA1Shifter())
	assert.ErrorIs(t, err, ErrUnsupportedCombination)
	assert.Equal(t, "A1", got.Formula)
}

func TestParsePasteNames(t *testing.T) {
	for _, pt := range []PasteType{PasteAll, PasteFormulas, PasteValues, PasteFormats, PasteValuesAndFormats} {
		got, err := ParsePasteType(pt.String())
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
	for _, op := range []PasteOperation{OpNone, OpAdd, OpSubtract, OpMultiply, OpDivide} {
		got, err := ParsePasteOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParsePasteType("everything")
	assert.Error(t, err)
	_, err = ParsePasteOperation("modulo")
	assert.Error(t, err)
}
