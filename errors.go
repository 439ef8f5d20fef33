package xlpaste

import (
	"errors"
	"fmt"
)

// Sentinel errors for paste operations.
var (
	// ErrInvalidRange is returned for malformed or out-of-bounds coordinates.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidOperation is returned when a request is well formed but cannot be carried out,
	// such as a transpose paste onto a range that overlaps its own source.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrMergeConflict is returned by MergeRegistry.Add when a region overlaps an existing one.
	// Paste reconciles it by unmerging the destination and never returns it.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrUnsupportedCombination marks a paste operation applied to non-numeric content.
	// The affected cell is overwritten instead and the paste continues.
	ErrUnsupportedCombination = errors.New("unsupported combination")

	// ErrRefOutOfRange is returned by a ReferenceShifter when a shifted reference
	// leaves the sheet.
	ErrRefOutOfRange = errors.New("reference out of range")

	// ErrEmptyClipboard is returned when pasting from a clipboard nothing was copied to.
	ErrEmptyClipboard = errors.New("clipboard is empty")
)

// PasteError reports the phase a paste failed in. It wraps one of the sentinel errors.
type PasteError struct {
	Phase string
	Err   error
}

// Error returns the phase-qualified message.
func (e *PasteError) Error() string {
	return fmt.Sprintf("paste %s: %v", e.Phase, e.Err)
}

// Unwrap returns the wrapped error.
func (e *PasteError) Unwrap() error { return e.Err }

func rangeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRange, fmt.Sprintf(format, args...))
}
