package xlpaste

import (
	"fmt"
)

// pastePhase is a state of the paste state machine.
type pastePhase int

const (
	phaseValidating pastePhase = iota
	phaseSizing
	phaseOverlapCheck
	phaseTiling
	phaseWriting
	phaseMerging
	phaseDone
)

func (p pastePhase) String() string {
	switch p {
	case phaseValidating:
		return "validating"
	case phaseSizing:
		return "sizing"
	case phaseOverlapCheck:
		return "overlap check"
	case phaseTiling:
		return "tiling"
	case phaseWriting:
		return "writing"
	case phaseMerging:
		return "merging"
	case phaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// cellWrite is one planned destination mutation.
type cellWrite struct {
	src     CellRef
	dst     CellRef
	content CellContent
}

// cellIssue is a per-cell degradation met while planning. The cell is still written.
type cellIssue struct {
	dst CellRef
	err error
}

// pastePlan is everything a paste will do to the destination sheet. Building it
// mutates nothing; applying it performs all writes at once.
type pastePlan struct {
	req       PasteRequest
	source    Rect
	dest      Rect
	tiling    Tiling
	srcCells  [][]CellContent
	writes    []cellWrite
	issues    []cellIssue
	skipped   int
	unmerge   []Rect
	merge     []Rect
	srcMerges []Rect // regions of the source, relative to its top-left
}

// planner runs the phases of a paste against the current sheet state.
// The caller must hold the locks of both sheets.
type planner struct {
	phase   pastePhase
	plan    *pastePlan
	shifter ReferenceShifter
}

func newPlanner(req PasteRequest, shifter ReferenceShifter) *planner {
	return &planner{
		phase:   phaseValidating,
		plan:    &pastePlan{req: req},
		shifter: shifter,
	}
}

// run drives the state machine to phaseDone. Any failure is reported with the phase it
// happened in, before a single cell has been written.
func (p *planner) run() (*pastePlan, error) {
	for p.phase != phaseDone {
		next, err := p.step()
		if err != nil {
			return nil, &PasteError{Phase: p.phase.String(), Err: err}
		}
		p.phase = next
	}
	return p.plan, nil
}

func (p *planner) step() (pastePhase, error) {
	switch p.phase {
	case phaseValidating:
		return phaseSizing, p.validate()
	case phaseSizing:
		return phaseOverlapCheck, p.size()
	case phaseOverlapCheck:
		return phaseTiling, p.checkOverlap()
	case phaseTiling:
		p.snapshot()
		return phaseWriting, nil
	case phaseWriting:
		p.planWrites()
		return phaseMerging, nil
	case phaseMerging:
		p.planMerges()
		return phaseDone, nil
	}
	return phaseDone, fmt.Errorf("unexpected phase %s", p.phase)
}

// validate normalizes both rects and checks them against their sheets.
func (p *planner) validate() error {
	req := p.plan.req
	src, dst := req.Source, req.Destination
	if src.sheet == nil {
		return rangeErrorf("source %s has no sheet", src.rect)
	}
	if dst.sheet == nil {
		return rangeErrorf("destination %s has no sheet", dst.rect)
	}
	if src.sheet.book != dst.sheet.book {
		return rangeErrorf("source %s and destination %s belong to different workbooks", src, dst)
	}

	source, err := Normalize(src.rect)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dest, err := Normalize(dst.rect)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if !src.sheet.bounds.ContainsRect(source) {
		return rangeErrorf("source %s outside sheet %q", source, src.sheet.name)
	}
	if !dst.sheet.bounds.ContainsRect(dest) {
		return rangeErrorf("destination %s outside sheet %q", dest, dst.sheet.name)
	}
	p.plan.source = source
	p.plan.dest = dest
	return nil
}

// size derives the tiled destination rect.
func (p *planner) size() error {
	dest := p.plan.dest
	anchor := dest.TopLeft(p.plan.req.Destination.sheet.name)
	p.plan.tiling = EffectiveDestination(anchor, p.plan.source, &dest, p.plan.req.Transpose)

	dstSheet := p.plan.req.Destination.sheet
	if !dstSheet.bounds.ContainsRect(p.plan.tiling.Rect) {
		return rangeErrorf("paste result %s outside sheet %q", p.plan.tiling.Rect, dstSheet.name)
	}
	return nil
}

// checkOverlap rejects a transpose onto its own source. Plain pastes may overlap.
func (p *planner) checkOverlap() error {
	req := p.plan.req
	if !req.Transpose || req.Source.sheet != req.Destination.sheet {
		return nil
	}
	if Intersects(p.plan.source, p.plan.tiling.Rect) {
		return fmt.Errorf("%w: transpose paste to overlapped range %s", ErrInvalidOperation, p.plan.tiling.Rect)
	}
	return nil
}

// snapshot copies the source cells and merged regions so later writes into an
// overlapping destination cannot change what is read.
func (p *planner) snapshot() {
	src := p.plan.req.Source.sheet
	source := p.plan.source

	p.plan.srcCells = make([][]CellContent, source.Rows())
	for dr := range p.plan.srcCells {
		row := make([]CellContent, source.Cols())
		for dc := range row {
			row[dc] = src.cell(source.Top+dr, source.Left+dc)
		}
		p.plan.srcCells[dr] = row
	}

	for _, region := range src.merges.Intersecting(source) {
		clipped, _ := Intersection(region, source)
		if clipped.IsCell() {
			continue
		}
		p.plan.srcMerges = append(p.plan.srcMerges, clipped.Offset(-source.Top, -source.Left))
	}
}

// planWrites computes the final content of every destination cell.
func (p *planner) planWrites() {
	plan := p.plan
	req := plan.req
	t := plan.tiling
	dstSheet := req.Destination.sheet
	srcName := req.Source.sheet.name

	for tr := 0; tr < t.RowTiles; tr++ {
		for tc := 0; tc < t.ColTiles; tc++ {
			for dr, row := range plan.srcCells {
				for dc, srcContent := range row {
					if req.SkipBlank && IsBlank(srcContent) {
						plan.skipped++
						continue
					}
					offRow, offCol := t.mapOffset(tr, tc, dr, dc, req.Transpose)
					dstRow, dstCol := t.Rect.Top+offRow, t.Rect.Left+offCol
					srcRow, srcCol := plan.source.Top+dr, plan.source.Left+dc

					dstRef := NewCellRef(dstSheet.name, dstRow, dstCol)
					content, err := Transfer(srcContent, dstSheet.cell(dstRow, dstCol), req.Type, req.Operation,
						dstRow-srcRow, dstCol-srcCol, p.shifter)
					if err != nil {
						plan.issues = append(plan.issues, cellIssue{dst: dstRef, err: err})
					}
					plan.writes = append(plan.writes, cellWrite{
						src:     NewCellRef(srcName, srcRow, srcCol),
						dst:     dstRef,
						content: content,
					})
				}
			}
		}
	}
}

// planMerges maps every source region into each tile and schedules the destination
// regions they replace. Merge state travels with the style attribute.
func (p *planner) planMerges() {
	plan := p.plan
	req := plan.req
	if _, _, takeStyle := req.Type.attributes(); !takeStyle {
		return
	}
	plan.unmerge = req.Destination.sheet.merges.Intersecting(plan.tiling.Rect)
	t := plan.tiling
	for tr := 0; tr < t.RowTiles; tr++ {
		for tc := 0; tc < t.ColTiles; tc++ {
			for _, rel := range plan.srcMerges {
				plan.merge = append(plan.merge, t.mapRect(rel, tr, tc, req.Transpose))
			}
		}
	}
}
