package table

import (
	"unicode/utf8"

	"github.com/stlalpha/tabview/internal/grid"
)

// Column is the display width of a column and the character offset of its
// left edge in an unscrolled rendering.
type Column struct {
	Width int
	Start int
}

// End is the offset just past the right edge of the column.
func (c Column) End() int {
	return c.Start + c.Width
}

// ComputeLayout sizes every column to its longest value (header included,
// counted in code points) plus padding. A column never gets wider than
// maxWidth, so every single column can be scrolled fully into view.
func ComputeLayout(g *grid.Grid, padding, maxWidth int) []Column {
	widths := make([]int, g.Columns())
	measure := func(row []string) {
		for i, value := range row {
			if n := utf8.RuneCountInString(value); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(g.Header)
	for _, row := range g.Rows {
		measure(row)
	}

	columns := make([]Column, len(widths))
	start := 0
	for i, w := range widths {
		w += padding
		if w > maxWidth {
			w = maxWidth
		}
		columns[i] = Column{Width: w, Start: start}
		start += w
	}
	return columns
}
