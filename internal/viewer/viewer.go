// Package viewer drives a table on a terminal: it decodes keys, applies
// them to the table state according to the input mode and writes the
// resulting redraws.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stlalpha/tabview/internal/grid"
	"github.com/stlalpha/tabview/internal/logging"
	"github.com/stlalpha/tabview/internal/render"
	"github.com/stlalpha/tabview/internal/table"
)

// Mode is the input mode of the viewer.
type Mode int

const (
	ModeNormal  Mode = iota // keys move, sort and search
	ModeCommand             // keys edit the command line
)

func (m Mode) String() string {
	if m == ModeCommand {
		return "command"
	}
	return "normal"
}

// Viewer owns one table state and the renderer that draws it. It implements
// tea.Model; bubbletea is only used to decode keys, frames are written
// straight to the output.
type Viewer struct {
	state    *table.State
	renderer render.Renderer
	out      io.Writer

	mode    Mode
	prevKey string
	normal  NormalKeyMap
	command CommandKeyMap

	err error
}

// New creates a viewer for g sized to the renderer's terminal. Frames are
// written to out.
func New(g *grid.Grid, r render.Renderer, out io.Writer) *Viewer {
	return &Viewer{
		state:    table.New(g, r.WindowSize()),
		renderer: r,
		out:      out,
		normal:   DefaultNormalKeyMap(),
		command:  DefaultCommandKeyMap(),
	}
}

// State returns the table state being viewed.
func (v *Viewer) State() *table.State {
	return v.state
}

// Mode returns the current input mode.
func (v *Viewer) Mode() Mode {
	return v.mode
}

// Run draws the first frame and handles keys read from in until a quit key,
// a write error or ctx is done. A cancelled context is a normal end.
func (v *Viewer) Run(ctx context.Context, in io.Reader, opts ...tea.ProgramOption) error {
	if err := v.draw(table.Rerender); err != nil {
		return err
	}

	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	}, opts...)
	p := tea.NewProgram(v, opts...)
	_, err := p.Run()
	switch {
	case v.err != nil:
		return v.err
	case errors.Is(err, tea.ErrInterrupted):
		return v.draw(table.Reset)
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		logging.Debug("viewer stopped: %v", ctx.Err())
		return nil
	case err != nil:
		return fmt.Errorf("key loop: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (v *Viewer) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	for _, k := range splitKeys(km) {
		sig := v.HandleKey(k)
		if err := v.draw(sig); err != nil {
			v.err = err
			return v, tea.Quit
		}
		if sig == table.Reset {
			return v, tea.Quit
		}
	}
	return v, nil
}

// View implements tea.Model. Nothing is rendered through bubbletea.
func (v *Viewer) View() string {
	return ""
}

// splitKeys breaks a burst of typed characters into one key per rune so
// that fast typing and pastes behave like separate key presses.
func splitKeys(msg tea.KeyMsg) []tea.KeyMsg {
	if msg.Type != tea.KeyRunes || len(msg.Runes) <= 1 {
		return []tea.KeyMsg{msg}
	}
	keys := make([]tea.KeyMsg, len(msg.Runes))
	for i, r := range msg.Runes {
		keys[i] = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: msg.Alt}
	}
	return keys
}

// HandleKey applies one key to the state and returns the redraw it needs.
func (v *Viewer) HandleKey(msg tea.KeyMsg) table.Signal {
	defer func() { v.prevKey = msg.String() }()
	if v.mode == ModeCommand {
		return v.handleCommandKey(msg)
	}
	return v.handleNormalKey(msg)
}

func (v *Viewer) handleNormalKey(msg tea.KeyMsg) table.Signal {
	s, k := v.state, v.normal
	switch {
	case key.Matches(msg, k.Quit):
		return table.Reset
	case key.Matches(msg, k.Ascending):
		return s.Ascending(s.CurrentColumn())
	case key.Matches(msg, k.Descending):
		return s.Descending(s.CurrentColumn())
	case key.Matches(msg, k.Restore):
		return s.RestoreOrder()
	case key.Matches(msg, k.Down):
		return s.MoveDown()
	case key.Matches(msg, k.Up):
		return s.MoveUp()
	case key.Matches(msg, k.PageDown):
		return s.MovePageDown()
	case key.Matches(msg, k.PageUp):
		return s.MovePageUp()
	case key.Matches(msg, k.Home):
		return s.MoveHome()
	case key.Matches(msg, k.Top):
		if v.prevKey == "g" {
			return s.MoveHome()
		}
		return table.None
	case key.Matches(msg, k.End):
		return s.MoveEnd()
	case key.Matches(msg, k.Right):
		return s.MoveRight()
	case key.Matches(msg, k.Left):
		return s.MoveLeft()
	case key.Matches(msg, k.StartOfLine):
		return s.MoveStartOfLine()
	case key.Matches(msg, k.EndOfLine):
		return s.MoveEndOfLine()
	case key.Matches(msg, k.Search):
		v.mode = ModeCommand
		return s.StartCommand()
	case key.Matches(msg, k.Repeat):
		return s.RepeatSearch()
	}
	return table.None
}

func (v *Viewer) handleCommandKey(msg tea.KeyMsg) table.Signal {
	s, k := v.state, v.command
	switch {
	case key.Matches(msg, k.Quit):
		return table.Reset
	case key.Matches(msg, k.Commit):
		v.mode = ModeNormal
		return s.CommitCommand()
	case key.Matches(msg, k.Cancel):
		v.mode = ModeNormal
		return s.CancelCommand()
	case key.Matches(msg, k.Delete):
		sig, ok := s.DeleteCommandChar()
		if !ok {
			v.mode = ModeNormal
		}
		return sig
	}

	if msg.Alt {
		return table.None
	}
	switch msg.Type {
	case tea.KeySpace:
		return s.AppendCommand(' ')
	case tea.KeyRunes:
		sig := table.None
		for _, r := range msg.Runes {
			sig = s.AppendCommand(r)
		}
		return sig
	}
	return table.None
}

func (v *Viewer) draw(sig table.Signal) error {
	out, ok := render.Render(v.renderer, v.state, sig)
	if !ok {
		return nil
	}
	if _, err := io.WriteString(v.out, out); err != nil {
		return fmt.Errorf("write %v: %w", sig, err)
	}
	return nil
}
