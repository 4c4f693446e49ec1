// Package terminalio adapts rendered frames to the character set of the
// terminal they are written to.
package terminalio

import (
	"fmt"
	"io"

	"github.com/stlalpha/tabview/internal/ansi"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Writer writes UTF-8 frames to a terminal. In CP437 mode printable text is
// encoded to CP437 bytes; escape sequences are plain ASCII and pass through
// unchanged. Runes with no CP437 equivalent become the SUB byte.
type Writer struct {
	w       io.Writer
	mode    ansi.OutputMode
	encoder transform.Transformer
}

// NewWriter wraps w for the given resolved output mode.
func NewWriter(w io.Writer, mode ansi.OutputMode) *Writer {
	tw := &Writer{w: w, mode: mode}
	if mode == ansi.OutputModeCP437 {
		tw.encoder = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	}
	return tw
}

// Mode returns the output mode the writer encodes for.
func (tw *Writer) Mode() ansi.OutputMode {
	return tw.mode
}

// Write implements io.Writer. Each call must hold whole runes, which is
// always the case for rendered frames.
func (tw *Writer) Write(p []byte) (int, error) {
	if tw.encoder == nil {
		return tw.w.Write(p)
	}
	encoded, _, err := transform.Bytes(tw.encoder, p)
	if err != nil {
		return 0, fmt.Errorf("cp437 encode: %w", err)
	}
	if _, err := tw.w.Write(encoded); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString writes s the same way as Write.
func (tw *Writer) WriteString(s string) (int, error) {
	return tw.Write([]byte(s))
}
