// Package render turns table state into terminal output.
package render

import (
	"fmt"

	"github.com/stlalpha/tabview/internal/table"
)

// Renderer produces the output for each redraw signal and reports the size
// of the terminal it draws on.
type Renderer interface {
	WindowSize() table.Extent
	// FullRender redraws the whole frame and places the cursor.
	FullRender(s *table.State) string
	// CursorRender only moves the cursor.
	CursorRender(s *table.State) string
	// CommandRender draws the command line.
	CommandRender(s *table.State) string
	// ClearRender clears the screen before exit.
	ClearRender() string
}

// Render dispatches sig to r. It reports false when nothing needs to be
// written.
func Render(r Renderer, s *table.State, sig table.Signal) (string, bool) {
	switch sig {
	case table.Rerender:
		return r.FullRender(s), true
	case table.MoveCursor:
		return r.CursorRender(s), true
	case table.Command:
		return r.CommandRender(s), true
	case table.Reset:
		return r.ClearRender(), true
	case table.None:
		return "", false
	}
	panic(fmt.Sprintf("render: unhandled %v", sig))
}
