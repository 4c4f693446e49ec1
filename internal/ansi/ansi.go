// Package ansi provides the escape sequences and output modes used to draw
// tables on ANSI terminals.
package ansi

import (
	"fmt"
	"strings"
)

// OutputMode defines the character encoding strategy for terminal output.
type OutputMode int

const (
	OutputModeAuto  OutputMode = iota // Default: decide from the terminal type
	OutputModeUTF8                    // Force UTF-8 character output
	OutputModeCP437                   // Force CP437 byte output
)

// ParseOutputMode accepts the -output-mode flag values.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return OutputModeAuto, nil
	case "utf8", "utf-8":
		return OutputModeUTF8, nil
	case "cp437":
		return OutputModeCP437, nil
	}
	return OutputModeAuto, fmt.Errorf("invalid output mode %q, must be auto, utf8 or cp437", s)
}

func (m OutputMode) String() string {
	switch m {
	case OutputModeUTF8:
		return "utf8"
	case OutputModeCP437:
		return "cp437"
	}
	return "auto"
}

// Resolve turns auto into a concrete mode for a terminal of the given TERM
// type. DOS-era terminal types get CP437, everything else UTF-8.
func (m OutputMode) Resolve(termType string) OutputMode {
	if m != OutputModeAuto {
		return m
	}
	switch strings.ToLower(termType) {
	case "ansi", "ansi-bbs", "pcansi", "scoansi", "syncterm", "cp437":
		return OutputModeCP437
	}
	return OutputModeUTF8
}

// Ellipsis marks a truncated cell.
func (m OutputMode) Ellipsis() string {
	if m == OutputModeCP437 {
		return "~"
	}
	return "…"
}

// ClearScreen clears the screen and homes the cursor.
func ClearScreen() string {
	return "\x1B[2J\x1B[H"
}

// MoveCursor returns an ANSI escape sequence to move the cursor to the specified row and column.
// Rows and columns are 1-indexed (1,1 is top-left).
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\x1B[%d;%dH", row, col)
}

// StripAnsi removes CSI escape sequences.
func StripAnsi(str string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(str); i++ {
		if str[i] == '\x1b' && i+1 < len(str) && str[i+1] == '[' {
			inEscape = true
			i++ // Skip '['
		} else if inEscape && (str[i] >= 'a' && str[i] <= 'z' || str[i] >= 'A' && str[i] <= 'Z') {
			inEscape = false
		} else if !inEscape {
			result.WriteByte(str[i])
		}
	}
	return result.String()
}
