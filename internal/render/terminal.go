package render

import (
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/stlalpha/tabview/internal/ansi"
	"github.com/stlalpha/tabview/internal/logging"
	"github.com/stlalpha/tabview/internal/table"
)

// Fallback size used when the terminal cannot be queried.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// SizeFunc reports a terminal size in characters.
type SizeFunc func() (width, height int, err error)

// FdSize returns a SizeFunc querying the terminal on fd.
func FdSize(fd int) SizeFunc {
	return func() (int, int, error) {
		return term.GetSize(fd)
	}
}

// FixedSize returns a SizeFunc for a size known up front, such as an SSH
// pty request.
func FixedSize(width, height int) SizeFunc {
	return func() (int, int, error) {
		return width, height, nil
	}
}

// Terminal renders tables for ANSI terminals.
type Terminal struct {
	size     SizeFunc
	header   lipgloss.Style
	ellipsis string
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithSize sets how the terminal size is queried. The default asks stdout.
func WithSize(f SizeFunc) Option {
	return func(t *Terminal) { t.size = f }
}

// WithOutputMode picks the truncation marker for a resolved output mode.
func WithOutputMode(mode ansi.OutputMode) Option {
	return func(t *Terminal) { t.ellipsis = mode.Ellipsis() }
}

// NewTerminal creates a renderer whose frames are written to out. The header
// is always bold, whatever out turns out to be.
func NewTerminal(out io.Writer, opts ...Option) *Terminal {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI)
	t := &Terminal{
		size:     FdSize(int(os.Stdout.Fd())),
		header:   r.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion),
		ellipsis: ansi.OutputModeUTF8.Ellipsis(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WindowSize implements Renderer.
func (t *Terminal) WindowSize() table.Extent {
	w, h, err := t.size()
	if err != nil || w <= 0 || h <= 0 {
		logging.Debug("terminal size unavailable (%dx%d, %v), using %dx%d", w, h, err, defaultWidth, defaultHeight)
		return table.Extent{Width: defaultWidth, Height: defaultHeight}
	}
	return table.Extent{Width: w, Height: h}
}

// ClearRender implements Renderer.
func (t *Terminal) ClearRender() string {
	return ansi.ClearScreen()
}

// FullRender implements Renderer.
func (t *Terminal) FullRender(s *table.State) string {
	return t.ClearRender() + t.frame(s) + t.CursorRender(s)
}

// CursorRender implements Renderer.
func (t *Terminal) CursorRender(s *table.State) string {
	col := s.Columns[s.CurrentColumn()]
	return ansi.MoveCursor(s.Cursor.Row+1, col.Start-s.XOffset()+1)
}

// CommandRender implements Renderer. The command line takes over the last
// terminal line until the next full render.
func (t *Terminal) CommandRender(s *table.State) string {
	home := ansi.MoveCursor(s.Extent.Height, 1)
	return home + strings.Repeat(" ", s.Extent.Width) + home + sanitize(s.CommandLine())
}

func (t *Terminal) frame(s *table.State) string {
	rows := s.VisibleRows()
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, t.header.Render(t.row(s, s.Grid.Header)))
	for _, row := range rows {
		lines = append(lines, t.row(s, row))
	}
	return strings.Join(lines, "\r\n")
}

// row lays out the cells of the visible columns. The last visible column is
// cut at the right edge of the terminal.
func (t *Terminal) row(s *table.State, cells []string) string {
	var b strings.Builder
	b.Grow(s.Extent.Width * 4)
	x := s.XOffset()
	for i := s.Offset.Col; i < len(s.Columns); i++ {
		col := s.Columns[i]
		if col.Start >= x+s.Extent.Width {
			break
		}
		width := col.Width
		if over := col.End() - x - s.Extent.Width; over > 0 {
			width -= over
		}
		b.WriteString(ansi.FitCell(sanitize(cells[i]), width, t.ellipsis))
	}
	return b.String()
}

// sanitize replaces control characters so that cell values cannot move the
// cursor or inject escape sequences. One rune maps to one rune, which keeps
// the layout widths valid.
func sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
