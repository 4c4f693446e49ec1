package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/stlalpha/tabview/internal/ansi"
	"github.com/stlalpha/tabview/internal/grid"
	"github.com/stlalpha/tabview/internal/logging"
	"github.com/stlalpha/tabview/internal/render"
	"github.com/stlalpha/tabview/internal/terminalio"
)

// ErrNotTerminal is returned when there is no terminal to draw on.
var ErrNotTerminal = errors.New("no controlling terminal")

// RunTerminal shows g on the controlling terminal until the user quits.
// When stdin carries the data, keys are read from /dev/tty instead.
func RunTerminal(ctx context.Context, g *grid.Grid, mode ansi.OutputMode) error {
	tty, err := openTerminal()
	if err != nil {
		return err
	}
	if tty != os.Stdin {
		defer tty.Close()
	}
	out := os.Stdout
	if !term.IsTerminal(int(out.Fd())) {
		out = tty
	}
	return runOnTerminal(ctx, g, tty, out, mode)
}

func openTerminal() (*os.File, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return os.Stdin, nil
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTerminal, err)
	}
	return tty, nil
}

// runOnTerminal holds in in raw mode for the whole session and restores it
// on every way out.
func runOnTerminal(ctx context.Context, g *grid.Grid, in, out *os.File, mode ansi.OutputMode) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			logging.Debug("restore terminal: %v", err)
		}
	}()

	if mode == ansi.OutputModeAuto {
		mode = ansi.OutputModeUTF8
	}
	w := terminalio.NewWriter(out, mode)
	r := render.NewTerminal(w,
		render.WithSize(render.FdSize(int(out.Fd()))),
		render.WithOutputMode(mode),
	)
	return New(g, r, w).Run(ctx, in)
}
