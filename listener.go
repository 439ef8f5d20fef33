package xlpaste

// PasteListener is notified before and after each cell a paste writes.
// Implement it to veto individual cells, audit changes, or mirror them elsewhere.
type PasteListener interface {
	// BeforeWriteCell is called with the current content of dst and the content
	// about to replace it. Return false to leave dst untouched.
	// The pasted sheets are locked during the call, so it must not call methods of
	// the Book or its sheets.
	BeforeWriteCell(src, dst CellRef, current, incoming CellContent) bool

	// AfterWriteCell is called for every written cell once the paste has released
	// its locks and formulas have been recalculated. It may read the workbook.
	AfterWriteCell(src, dst CellRef)
}
