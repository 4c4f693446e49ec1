package table

import "strings"

// SearchPrompt starts every command line.
const SearchPrompt = '/'

// Search scans the column under the cursor for a cell containing pattern,
// starting with the row after the cursor and wrapping around to the first
// row. The first match is brought into view with the cursor on it. Without
// a match nothing changes.
func (s *State) Search(pattern string) Signal {
	n := s.Grid.Len()
	col := s.CurrentColumn()
	start := s.Offset.Row + s.Cursor.Row
	for i := 0; i < n; i++ {
		row := (start + i) % n
		if strings.Contains(s.Grid.Rows[row][col], pattern) {
			s.jumpToRow(row)
			break
		}
	}
	return Rerender
}

// jumpToRow places row on screen the way paging would: inside the first
// window the cursor moves to it, inside the last window the window is
// pinned to the end, anywhere else row becomes the top line.
func (s *State) jumpToRow(row int) {
	rows := s.DisplayableDataRows()
	switch {
	case row < rows:
		s.Offset.Row = 0
		s.Cursor.Row = row + 1
	case s.Grid.Len()-row < rows:
		s.Offset.Row = s.Grid.Len() - rows
		s.Cursor.Row = row - s.Offset.Row + 1
	default:
		s.Offset.Row = row
		s.Cursor.Row = 1
	}
}

// StartCommand empties the command buffer and seeds it with the prompt.
func (s *State) StartCommand() Signal {
	s.command = append(s.command[:0], SearchPrompt)
	return Command
}

// AppendCommand adds a typed character to the command buffer.
func (s *State) AppendCommand(r rune) Signal {
	s.command = append(s.command, r)
	return Command
}

// DeleteCommandChar removes the last character from the command buffer.
// It reports false once the buffer is empty, at which point the command
// line is abandoned and the frame is redrawn.
func (s *State) DeleteCommandChar() (Signal, bool) {
	if n := len(s.command); n > 0 {
		s.command = s.command[:n-1]
	}
	if len(s.command) == 0 {
		return Rerender, false
	}
	return Command, true
}

// CommitCommand runs the buffered search and clears the buffer. An empty
// pattern only redraws the frame.
func (s *State) CommitCommand() Signal {
	cmd := s.command
	s.command = s.command[:0]
	if len(cmd) <= 1 || cmd[0] != SearchPrompt {
		return Rerender
	}
	s.lastPattern = string(cmd[1:])
	return s.Search(s.lastPattern)
}

// CancelCommand drops the command buffer.
func (s *State) CancelCommand() Signal {
	s.command = s.command[:0]
	return Rerender
}

// RepeatSearch runs the last committed search again from the cursor.
func (s *State) RepeatSearch() Signal {
	if s.lastPattern == "" {
		return None
	}
	return s.Search(s.lastPattern)
}
