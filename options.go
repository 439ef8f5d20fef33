package xlpaste

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
)

// Options holds configuration for a Book.
type Options struct {
	logger       *log.Logger
	recalculator Recalculator
	shifter      ReferenceShifter
	listeners    []PasteListener
	maxRows      int
	maxCols      int
	recalc       bool
}

func defaultOptions() *Options {
	return &Options{
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		maxRows: excelize.TotalRows,
		maxCols: excelize.MaxColumns,
		recalc:  true,
	}
}

// Option configures a Book.
type Option func(*Options)

// WithLogger sets the logger paste phases report to (default: discard).
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecalculator replaces the formula engine run once after each paste.
func WithRecalculator(r Recalculator) Option {
	return func(o *Options) { o.recalculator = r }
}

// WithRecalculation enables or disables recalculation after paste (default: true).
func WithRecalculation(enabled bool) Option {
	return func(o *Options) { o.recalc = enabled }
}

// WithReferenceShifter replaces the formula reference shifter.
func WithReferenceShifter(s ReferenceShifter) Option {
	return func(o *Options) { o.shifter = s }
}

// WithPasteListener adds a listener notified around every cell a paste writes.
func WithPasteListener(l PasteListener) Option {
	return func(o *Options) { o.listeners = append(o.listeners, l) }
}

// WithSheetBounds limits new sheets to rows x cols cells
// (default: the xlsx limits, 1048576 x 16384).
func WithSheetBounds(rows, cols int) Option {
	return func(o *Options) {
		if rows > 0 {
			o.maxRows = rows
		}
		if cols > 0 {
			o.maxCols = cols
		}
	}
}
