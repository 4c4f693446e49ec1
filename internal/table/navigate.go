package table

// pageStep is how far a page moves the window: one row less than the
// window so the old bottom row stays on screen as the new top.
func (s *State) pageStep() int {
	return max(1, s.DisplayableDataRows()-1)
}

// lastWindowOffset is the row offset at which the final row sits on the
// bottom line.
func (s *State) lastWindowOffset() int {
	return max(0, s.Grid.Len()-s.DisplayableDataRows())
}

// MoveDown moves the cursor one row down, shifting the window when the
// cursor is already on the bottom line.
func (s *State) MoveDown() Signal {
	if !s.IsBottom() {
		s.Cursor.Row++
		return MoveCursor
	}
	if !s.FinalRowVisible() {
		s.Offset.Row++
		return Rerender
	}
	return None
}

// MoveUp moves the cursor one row up. From the first displayed row the
// window shifts up, or the cursor steps onto the header once the first data
// row is already visible.
func (s *State) MoveUp() Signal {
	switch {
	case s.Cursor.Row == 1 && !s.FirstRowVisible():
		s.Offset.Row--
		return Rerender
	case s.Cursor.Row != 0:
		s.Cursor.Row--
		return MoveCursor
	}
	return None
}

// MovePageDown advances the window by a page.
func (s *State) MovePageDown() Signal {
	switch {
	case s.Grid.Len() == 0:
		return None
	// from the header we only step onto the first data row
	case s.Cursor.Row == 0:
		s.Cursor.Row = 1
		return MoveCursor
	case !s.FinalRowVisible():
		s.Offset.Row = min(s.lastWindowOffset(), s.Offset.Row+s.pageStep())
		return Rerender
	case s.Cursor.Row != s.bottom():
		s.Cursor.Row = s.bottom()
		return MoveCursor
	}
	return None
}

// MovePageUp moves the window back by a page, then the cursor to the header.
func (s *State) MovePageUp() Signal {
	switch {
	case !s.FirstRowVisible():
		s.Offset.Row = max(0, s.Offset.Row-s.pageStep())
		return Rerender
	case s.Cursor.Row != 0:
		s.Cursor.Row = 0
		return MoveCursor
	}
	return None
}

// MoveHome shows the first window with the cursor on the header.
func (s *State) MoveHome() Signal {
	s.Offset.Row = 0
	s.Cursor.Row = 0
	return Rerender
}

// MoveEnd shows the last window with the cursor on the final row.
func (s *State) MoveEnd() Signal {
	s.Offset.Row = s.lastWindowOffset()
	s.Cursor.Row = s.bottom()
	return Rerender
}

// MoveRight moves the cursor one column right. When the new column does
// not fit, the window scrolls to the smallest offset at which it does.
func (s *State) MoveRight() Signal {
	if s.CurrentColumn() == len(s.Columns)-1 {
		return None
	}
	s.Cursor.Col++
	current := s.CurrentColumn()
	end := s.Columns[current].End()
	if end-s.XOffset() <= s.Extent.Width {
		return MoveCursor
	}
	for i := s.Offset.Col; i <= current; i++ {
		if end-s.Columns[i].Start <= s.Extent.Width {
			s.Cursor.Col -= i - s.Offset.Col
			s.Offset.Col = i
			break
		}
	}
	return Rerender
}

// MoveLeft moves the cursor one column left, scrolling the window by one
// column at its left edge.
func (s *State) MoveLeft() Signal {
	switch {
	case s.Cursor.Col != 0:
		s.Cursor.Col--
		return MoveCursor
	case s.Offset.Col != 0:
		s.Offset.Col--
		return Rerender
	}
	return None
}

// MoveStartOfLine moves the cursor to the first column.
func (s *State) MoveStartOfLine() Signal {
	s.Cursor.Col = 0
	if s.Offset.Col == 0 {
		return MoveCursor
	}
	s.Offset.Col = 0
	return Rerender
}

// MoveEndOfLine scrolls so that the last column's right edge is in view
// with as many columns before it as fit, and puts the cursor on it.
func (s *State) MoveEndOfLine() Signal {
	last := len(s.Columns) - 1
	end := s.Columns[last].End()
	for i, col := range s.Columns {
		if end-col.Start <= s.Extent.Width {
			s.Offset.Col = i
			s.Cursor.Col = last - i
			break
		}
	}
	return Rerender
}
