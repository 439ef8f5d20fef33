package xlpaste

import (
	"github.com/google/uuid"
)

// PasteRequest describes one paste.
type PasteRequest struct {
	Source      Range
	Destination Range // a single anchor cell or a rect whose size decides the tile count
	Type        PasteType
	Operation   PasteOperation
	SkipBlank   bool
	Transpose   bool
}

// Paste copies req.Source into req.Destination and returns the range written.
//
// The whole paste is planned against a snapshot of the source before the destination
// is touched, so a failure leaves both sheets unchanged and an overlapping paste reads
// the original source content. Formulas are recalculated once after the sheet locks
// are released.
func (b *Book) Paste(req PasteRequest) (Range, error) {
	txID := uuid.NewString()
	logger := b.opts.logger.With("tx", txID)

	src, dst := req.Source.sheet, req.Destination.sheet
	if src == nil || dst == nil {
		err := &PasteError{Phase: phaseValidating.String(), Err: rangeErrorf("paste %s to %s: missing sheet", req.Source, req.Destination)}
		logger.Debug("paste rejected", "err", err)
		return Range{}, err
	}
	if src.book != b || dst.book != b {
		err := &PasteError{Phase: phaseValidating.String(), Err: rangeErrorf("paste %s to %s: sheet from another workbook", req.Source, req.Destination)}
		logger.Debug("paste rejected", "err", err)
		return Range{}, err
	}

	logger.Debug("paste",
		"source", req.Source,
		"destination", req.Destination,
		"type", req.Type,
		"op", req.Operation,
		"skipBlank", req.SkipBlank,
		"transpose", req.Transpose)

	unlock := lockPair(src, dst)
	plan, err := newPlanner(req, b.shifter).run()
	if err != nil {
		unlock()
		logger.Debug("paste rejected", "err", err)
		return Range{}, err
	}
	written := b.apply(plan)
	unlock()

	for _, issue := range plan.issues {
		logger.Warn("cell degraded", "cell", issue.dst, "err", issue.err)
	}
	logger.Debug("paste done",
		"result", plan.tiling.Rect,
		"tiles", plan.tiling.RowTiles*plan.tiling.ColTiles,
		"written", len(written),
		"skipped", plan.skipped,
		"merges", len(plan.merge))

	result := Range{sheet: dst, rect: plan.tiling.Rect}
	if b.opts.recalc {
		if err := b.engine.Recalculate(b, result); err != nil {
			logger.Warn("recalculation failed", "err", err)
		}
	}
	for _, w := range written {
		for _, l := range b.opts.listeners {
			l.AfterWriteCell(w.src, w.dst)
		}
	}
	return result, nil
}

// apply performs a plan. The destination sheet must be write-locked.
// It returns the writes no listener vetoed.
func (b *Book) apply(plan *pastePlan) []cellWrite {
	dst := plan.req.Destination.sheet

	for _, region := range plan.unmerge {
		dst.merges.Remove(region)
	}

	written := make([]cellWrite, 0, len(plan.writes))
	for _, w := range plan.writes {
		if !b.beforeWrite(w, dst.cell(w.dst.Row, w.dst.Col)) {
			continue
		}
		dst.setCell(w.dst.Row, w.dst.Col, w.content)
		written = append(written, w)
	}

	for _, region := range plan.merge {
		removed, err := dst.merges.replace(region)
		if err != nil {
			// Regions are clipped to the source and the result was checked against the
			// sheet bounds, so only a malformed region can fail here.
			b.opts.logger.Warn("merge skipped", "region", region, "err", err)
			continue
		}
		if len(removed) > 0 {
			b.opts.logger.Debug("merge replaced", "region", region, "removed", removed)
		}
	}
	return written
}

func (b *Book) beforeWrite(w cellWrite, current CellContent) bool {
	for _, l := range b.opts.listeners {
		if !l.BeforeWriteCell(w.src, w.dst, current, w.content) {
			return false
		}
	}
	return true
}

// lockPair locks src for reading and dst for writing, in sheet order, and returns
// the matching unlock. A paste within one sheet takes a single write lock.
func lockPair(src, dst *Sheet) func() {
	if src == dst {
		dst.mu.Lock()
		return dst.mu.Unlock
	}
	if src.index < dst.index {
		src.mu.RLock()
		dst.mu.Lock()
	} else {
		dst.mu.Lock()
		src.mu.RLock()
	}
	return func() {
		dst.mu.Unlock()
		src.mu.RUnlock()
	}
}
