package xlpaste

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable dump of a range: a grid of the displayed cell
// texts followed by the formulas and merged regions inside it.
// Useful for inspecting the result of a paste.
func Describe(r Range) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s range %s\n", r, r.rect.Size())
	if r.sheet == nil {
		return b.String()
	}

	book := r.sheet.book
	texts := make([][]string, r.rect.Rows())
	widths := make([]int, r.rect.Cols())
	var formulas []string
	for i := range texts {
		texts[i] = make([]string, r.rect.Cols())
		for j := range texts[i] {
			ref := NewCellRef(r.sheet.name, r.rect.Top+i, r.rect.Left+j)
			texts[i][j] = book.FormatText(ref)
			widths[j] = max(widths[j], len(texts[i][j]), len(ColToName(ref.Col)))
			if c := r.sheet.Cell(ref.Row, ref.Col); c.IsFormula() {
				formulas = append(formulas, fmt.Sprintf("    %s: =%s", ref.CellName(), c.Formula))
			}
		}
	}

	rowLabel := len(fmt.Sprint(r.rect.Bottom + 1))
	b.WriteString(strings.Repeat(" ", rowLabel+2))
	for j, w := range widths {
		fmt.Fprintf(&b, " %-*s", w, ColToName(r.rect.Left+j))
	}
	b.WriteByte('\n')
	for i, row := range texts {
		fmt.Fprintf(&b, "  %*d", rowLabel, r.rect.Top+i+1)
		for j, text := range row {
			fmt.Fprintf(&b, " %-*s", widths[j], text)
		}
		b.WriteString("\n")
	}

	if len(formulas) > 0 {
		b.WriteString("  Formulas:\n")
		for _, f := range formulas {
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}

	merges := inRange(r.sheet.MergedRegions(), r.rect)
	if len(merges) > 0 {
		b.WriteString("  Merged:\n")
		for _, m := range merges {
			fmt.Fprintf(&b, "    %s %s\n", m, m.Size())
		}
	}
	return b.String()
}

// inRange keeps the regions intersecting rect.
func inRange(regions []Rect, rect Rect) []Rect {
	var out []Rect
	for _, m := range regions {
		if Intersects(m, rect) {
			out = append(out, m)
		}
	}
	return out
}
