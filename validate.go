package xlpaste

import (
	"errors"
	"fmt"
)

// Severity indicates the severity of a preview issue.
type Severity int

const (
	SeverityError   Severity = iota // Cell will hold an error value
	SeverityWarning                 // Cell is written, but not as requested
)

// ValidationIssue is a single problem a paste would run into.
type ValidationIssue struct {
	Severity Severity
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef, v.Message)
}

// PastePreview is what a paste would do, computed without touching either sheet.
type PastePreview struct {
	Result   Rect
	RowTiles int
	ColTiles int
	Writes   int
	Skipped  int
	Merges   []Rect // regions that would be added to the destination
	Unmerged []Rect // destination regions that would be removed
	Issues   []ValidationIssue
}

// PlanPaste runs every paste phase on req without writing anything. A request that
// Paste would reject fails here with the same error.
func (b *Book) PlanPaste(req PasteRequest) (*PastePreview, error) {
	src, dst := req.Source.sheet, req.Destination.sheet
	if src == nil || dst == nil {
		return nil, &PasteError{Phase: phaseValidating.String(), Err: rangeErrorf("paste %s to %s: missing sheet", req.Source, req.Destination)}
	}

	unlock := rlockPair(src, dst)
	plan, err := newPlanner(req, b.shifter).run()
	unlock()
	if err != nil {
		return nil, err
	}

	preview := &PastePreview{
		Result:   plan.tiling.Rect,
		RowTiles: plan.tiling.RowTiles,
		ColTiles: plan.tiling.ColTiles,
		Writes:   len(plan.writes),
		Skipped:  plan.skipped,
		Merges:   plan.merge,
		Unmerged: plan.unmerge,
	}
	for _, issue := range plan.issues {
		preview.Issues = append(preview.Issues, issueFor(issue))
	}
	return preview, nil
}

// issueFor classifies a per-cell degradation.
func issueFor(c cellIssue) ValidationIssue {
	if errors.Is(c.err, ErrUnsupportedCombination) {
		return ValidationIssue{Severity: SeverityWarning, CellRef: c.dst, Message: c.err.Error()}
	}
	return ValidationIssue{Severity: SeverityError, CellRef: c.dst, Message: c.err.Error()}
}

func rlockPair(src, dst *Sheet) func() {
	if src == dst {
		src.mu.RLock()
		return src.mu.RUnlock
	}
	first, second := src, dst
	if dst.index < src.index {
		first, second = dst, src
	}
	first.mu.RLock()
	second.mu.RLock()
	return func() {
		second.mu.RUnlock()
		first.mu.RUnlock()
	}
}
