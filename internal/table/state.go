// Package table is the viewport and cursor state machine of the viewer.
//
// A State owns the Grid, the column layout, the viewport offset, the cursor
// (relative to the viewport) and the command-line buffer. Every user command
// is one method that mutates the State and returns the Signal describing the
// cheapest redraw that reflects the change. None of the methods can fail:
// offsets and cursor positions are kept in range by construction.
package table

import (
	"github.com/stlalpha/tabview/internal/grid"
)

// Padding is added to the widest cell of each column.
const Padding = 2

// Extent is a terminal size in characters.
type Extent struct {
	Width  int
	Height int
}

// clamp keeps at least one column and one data row below the header.
func (e Extent) clamp() Extent {
	if e.Width < 1 {
		e.Width = 1
	}
	if e.Height < 2 {
		e.Height = 2
	}
	return e
}

// Coord is a cell position in rows and columns.
type Coord struct {
	Row int
	Col int
}

// State keeps data and viewport state for rendering.
//
// Offset is the index of the first visible data row and column. Cursor is
// relative to the viewport: Cursor.Row 0 is the header line and 1..N are the
// visible data rows; Cursor.Col counts from Offset.Col.
type State struct {
	Grid    *grid.Grid
	Columns []Column
	Extent  Extent
	Cursor  Coord
	Offset  Coord

	command     []rune
	lastPattern string
}

// New builds the state for g sized against the terminal extent ext. The
// column layout is computed once here and never recomputed.
func New(g *grid.Grid, ext Extent) *State {
	ext = ext.clamp()
	return &State{
		Grid:    g,
		Columns: ComputeLayout(g, Padding, ext.Width),
		Extent:  ext,
		command: make([]rune, 0, ext.Width),
	}
}

// XOffset is the character offset of the first visible column in an
// unscrolled rendering.
func (s *State) XOffset() int {
	return s.Columns[s.Offset.Col].Start
}

// DisplayableDataRows is the terminal height minus the header line.
func (s *State) DisplayableDataRows() int {
	return s.Extent.Height - 1
}

// FinalRowVisible reports whether the last data row is inside the window.
func (s *State) FinalRowVisible() bool {
	return s.Offset.Row+s.DisplayableDataRows() >= s.Grid.Len()
}

// FirstRowVisible reports whether the first data row is inside the window.
func (s *State) FirstRowVisible() bool {
	return s.Offset.Row == 0
}

// LastColumnVisible reports whether the right edge of the last column fits
// in the window.
func (s *State) LastColumnVisible() bool {
	last := s.Columns[len(s.Columns)-1]
	return last.End() <= s.XOffset()+s.Extent.Width
}

// bottom is the lowest cursor row that holds data.
func (s *State) bottom() int {
	return min(s.DisplayableDataRows(), s.Grid.Len())
}

// IsBottom reports whether the cursor sits on the lowest displayed row.
func (s *State) IsBottom() bool {
	return s.Cursor.Row == s.bottom()
}

// CurrentColumn is the absolute index of the column under the cursor.
func (s *State) CurrentColumn() int {
	return s.Offset.Col + s.Cursor.Col
}

// CurrentRow is the absolute index of the data row under the cursor, or -1
// while the cursor is on the header.
func (s *State) CurrentRow() int {
	if s.Cursor.Row == 0 {
		return -1
	}
	return s.Offset.Row + s.Cursor.Row - 1
}

// VisibleRows returns the data rows inside the window, top to bottom.
func (s *State) VisibleRows() [][]string {
	stop := min(s.Offset.Row+s.DisplayableDataRows(), s.Grid.Len())
	return s.Grid.Rows[s.Offset.Row:stop]
}

// CommandLine returns the command being typed, prompt included.
func (s *State) CommandLine() string {
	return string(s.command)
}

// LastPattern returns the most recently committed search pattern.
func (s *State) LastPattern() string {
	return s.lastPattern
}
