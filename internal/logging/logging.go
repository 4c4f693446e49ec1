// Package logging provides debug logging and log destination setup for tabview.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// DebugEnabled controls whether Debug() produces output.
// Set via -debug flag or DEBUG=1 environment variable.
var DebugEnabled bool

// Debug logs a message only when DebugEnabled is true.
func Debug(format string, args ...any) {
	if DebugEnabled {
		log.Printf("DEBUG: "+format, args...)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the standard logger at path and, when console is non-nil,
// at console as well. With neither, logs are discarded: a terminal in raw
// mode must not receive stray log lines. The returned Closer closes the log
// file.
func Setup(path string, console io.Writer) (io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}
	if console != nil {
		writers = append(writers, console)
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		writers = append(writers, f)
		closer = f
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return closer, nil
}
