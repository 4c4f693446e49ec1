package ansi

import (
	"strings"
	"unicode/utf8"
)

// escapeEnd returns the index just past the CSI sequence starting at i.
func escapeEnd(s string, i int) int {
	i += 2
	for i < len(s) && !((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}
	if i < len(s) {
		i++ // Skip terminator
	}
	return i
}

// VisibleLength returns the number of code points in s that would be
// visible on screen, ignoring ANSI escape sequences.
func VisibleLength(s string) int {
	visCount := 0
	for i := 0; i < len(s); {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			i = escapeEnd(s, i)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		visCount++
		i += size
	}
	return visCount
}

// TruncateVisible truncates a string to maxVisible code points while
// preserving ANSI codes, including those after the cut such as a reset.
func TruncateVisible(s string, maxVisible int) string {
	if maxVisible <= 0 {
		return ""
	}

	var result strings.Builder
	result.Grow(len(s))

	visCount := 0
	for i := 0; i < len(s); {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			end := escapeEnd(s, i)
			result.WriteString(s[i:end])
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		if visCount < maxVisible {
			result.WriteString(s[i : i+size])
			visCount++
		}
		i += size
	}
	return result.String()
}

// PadVisible pads a string to the specified width using the given pad character.
// ANSI escape sequences do not count toward the width.
func PadVisible(s string, width int, padChar rune) string {
	visLen := VisibleLength(s)
	if visLen >= width {
		return s
	}
	return s + strings.Repeat(string(padChar), width-visLen)
}

// FitCell makes s exactly width code points wide: short values are padded
// with spaces, long values are cut and end in ellipsis.
func FitCell(s string, width int, ellipsis string) string {
	if width <= 0 {
		return ""
	}
	if VisibleLength(s) > width {
		keep := width - VisibleLength(ellipsis)
		if keep < 0 {
			return TruncateVisible(ellipsis, width)
		}
		return TruncateVisible(s, keep) + ellipsis
	}
	return PadVisible(s, width, ' ')
}
