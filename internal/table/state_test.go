package table

import (
	"math/rand/v2"
	"reflect"
	"strconv"
	"testing"

	"github.com/stlalpha/tabview/internal/grid"
)

// smallTable is the 5-row, 4-column grid on a 9x4 terminal (3 data rows).
func smallTable(t *testing.T) *State {
	t.Helper()
	g, err := grid.Numbered([]string{"a", "bb", "c"}, [][]string{
		{"1a", "1bb", "1c"},
		{"2a", "2bb", "2c"},
		{"3a", "3bb", "3c"},
		{"4a", "4bb", "4c"},
		{"5a", "5bb", "5c"},
	})
	if err != nil {
		t.Fatalf("building grid: %v", err)
	}
	return New(g, Extent{Width: 9, Height: 4})
}

// numberedTable builds a grid with n rows whose single data column holds
// "v<i>" and is sized to ext.
func numberedTable(t *testing.T, n int, ext Extent) *State {
	t.Helper()
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{"v" + strconv.Itoa(i+1)}
	}
	g, err := grid.Numbered([]string{"value"}, rows)
	if err != nil {
		t.Fatalf("building grid: %v", err)
	}
	return New(g, ext)
}

func rowNumbers(s *State) []string {
	out := make([]string, len(s.Grid.Rows))
	for i, row := range s.Grid.Rows {
		out[i] = row[0]
	}
	return out
}

func checkInvariants(t *testing.T, s *State, step string) {
	t.Helper()
	rows := s.DisplayableDataRows()
	n := s.Grid.Len()
	c := len(s.Columns)
	if s.Offset.Row < 0 || s.Offset.Row > max(0, n-rows) {
		t.Fatalf("%s: row offset %d out of [0, %d]", step, s.Offset.Row, max(0, n-rows))
	}
	if s.Cursor.Row < 0 || s.Cursor.Row > min(rows, n) {
		t.Fatalf("%s: cursor row %d out of [0, %d]", step, s.Cursor.Row, min(rows, n))
	}
	if s.Offset.Col < 0 || s.Offset.Col >= c {
		t.Fatalf("%s: column offset %d out of [0, %d)", step, s.Offset.Col, c)
	}
	if s.Cursor.Col < 0 || s.Cursor.Col >= c-s.Offset.Col {
		t.Fatalf("%s: cursor column %d out of [0, %d)", step, s.Cursor.Col, c-s.Offset.Col)
	}
	if cur := s.Columns[s.CurrentColumn()]; cur.End()-s.XOffset() > s.Extent.Width {
		t.Fatalf("%s: current column ends at %d, past window width %d", step, cur.End()-s.XOffset(), s.Extent.Width)
	}
}

func TestComputeLayout(t *testing.T) {
	s := smallTable(t)
	want := []Column{{Width: 3, Start: 0}, {Width: 4, Start: 3}, {Width: 5, Start: 7}, {Width: 4, Start: 12}}
	if !reflect.DeepEqual(s.Columns, want) {
		t.Errorf("layout = %+v, want %+v", s.Columns, want)
	}
}

func TestComputeLayout_ClampsToTerminalWidth(t *testing.T) {
	g, err := grid.Numbered([]string{"long"}, [][]string{{"a value far wider than the terminal"}})
	if err != nil {
		t.Fatal(err)
	}
	cols := ComputeLayout(g, Padding, 10)
	if cols[1].Width != 10 {
		t.Errorf("wide column width = %d, want 10", cols[1].Width)
	}
	if cols[1].Start != cols[0].End() {
		t.Errorf("columns are not contiguous: %+v", cols)
	}
}

func TestComputeLayout_CountsCodePoints(t *testing.T) {
	g, err := grid.Numbered([]string{"h"}, [][]string{{"héllo"}})
	if err != nil {
		t.Fatal(err)
	}
	cols := ComputeLayout(g, Padding, 80)
	if cols[1].Width != 7 {
		t.Errorf("width = %d, want 7", cols[1].Width)
	}
}

func TestNew_ClampsExtent(t *testing.T) {
	s := numberedTable(t, 3, Extent{Width: 0, Height: 1})
	if s.Extent.Width != 1 || s.Extent.Height != 2 {
		t.Errorf("extent = %+v, want 1x2", s.Extent)
	}
	if s.DisplayableDataRows() != 1 {
		t.Errorf("displayable rows = %d, want 1", s.DisplayableDataRows())
	}
}

func TestMoveDown_ShiftsWindowAtBottom(t *testing.T) {
	s := smallTable(t)

	for row := 1; row <= 3; row++ {
		if got := s.MoveDown(); got != MoveCursor {
			t.Fatalf("move %d: got %v, want MoveCursor", row, got)
		}
		if s.Cursor.Row != row || s.Offset.Row != 0 {
			t.Fatalf("move %d: cursor %d offset %d", row, s.Cursor.Row, s.Offset.Row)
		}
	}

	if got := s.MoveDown(); got != Rerender {
		t.Fatalf("fourth move: got %v, want Rerender", got)
	}
	if s.Offset.Row != 1 || s.Cursor.Row != 3 {
		t.Fatalf("fourth move: offset %d cursor %d, want 1 and 3", s.Offset.Row, s.Cursor.Row)
	}

	if got := s.MoveDown(); got != Rerender {
		t.Fatalf("fifth move: got %v, want Rerender", got)
	}
	if s.Offset.Row != 2 {
		t.Fatalf("fifth move: offset %d, want 2", s.Offset.Row)
	}

	if got := s.MoveDown(); got != None {
		t.Fatalf("move past the end: got %v, want None", got)
	}
	if s.Offset.Row != 2 || s.Cursor.Row != 3 {
		t.Fatalf("state changed at the end: offset %d cursor %d", s.Offset.Row, s.Cursor.Row)
	}
}

func TestMoveDown_ExactlyOneWindow(t *testing.T) {
	s := numberedTable(t, 3, Extent{Width: 20, Height: 4})
	s.Cursor.Row = 3
	if got := s.MoveDown(); got != None {
		t.Errorf("got %v, want None", got)
	}
}

func TestMoveUp_ShiftsWindowThenHeader(t *testing.T) {
	s := smallTable(t)
	s.Offset.Row = 2
	s.Cursor.Row = 3

	for _, want := range []int{2, 1} {
		if got := s.MoveUp(); got != MoveCursor {
			t.Fatalf("got %v, want MoveCursor", got)
		}
		if s.Cursor.Row != want {
			t.Fatalf("cursor %d, want %d", s.Cursor.Row, want)
		}
	}
	for _, want := range []int{1, 0} {
		if got := s.MoveUp(); got != Rerender {
			t.Fatalf("got %v, want Rerender", got)
		}
		if s.Offset.Row != want || s.Cursor.Row != 1 {
			t.Fatalf("offset %d cursor %d, want %d and 1", s.Offset.Row, s.Cursor.Row, want)
		}
	}
	if got := s.MoveUp(); got != MoveCursor || s.Cursor.Row != 0 {
		t.Fatalf("step onto header: got %v cursor %d", got, s.Cursor.Row)
	}
	if got := s.MoveUp(); got != None {
		t.Fatalf("header to header: got %v, want None", got)
	}
}

func TestPageDown(t *testing.T) {
	s := numberedTable(t, 10, Extent{Width: 20, Height: 5}) // 4 data rows, step 3

	if got := s.MovePageDown(); got != MoveCursor || s.Cursor.Row != 1 {
		t.Fatalf("from header: got %v cursor %d", got, s.Cursor.Row)
	}
	if got := s.MovePageDown(); got != Rerender || s.Offset.Row != 3 {
		t.Fatalf("first page: got %v offset %d", got, s.Offset.Row)
	}
	if got := s.MovePageDown(); got != Rerender || s.Offset.Row != 6 {
		t.Fatalf("second page: got %v offset %d", got, s.Offset.Row)
	}
	if got := s.MovePageDown(); got != MoveCursor || s.Cursor.Row != 4 {
		t.Fatalf("final window: got %v cursor %d", got, s.Cursor.Row)
	}
	if got := s.MovePageDown(); got != None {
		t.Fatalf("at the end: got %v, want None", got)
	}
}

func TestPageDown_ClampsToLastWindow(t *testing.T) {
	s := numberedTable(t, 6, Extent{Width: 20, Height: 5})
	s.Cursor.Row = 2
	s.Offset.Row = 1
	if got := s.MovePageDown(); got != Rerender {
		t.Fatalf("got %v, want Rerender", got)
	}
	if s.Offset.Row != 2 {
		t.Errorf("offset %d, want 2", s.Offset.Row)
	}
}

func TestPageDown_AllRowsFit(t *testing.T) {
	s := numberedTable(t, 2, Extent{Width: 20, Height: 10})
	s.Cursor.Row = 1
	if got := s.MovePageDown(); got != MoveCursor || s.Cursor.Row != 2 {
		t.Fatalf("got %v cursor %d, want MoveCursor and 2", got, s.Cursor.Row)
	}
}

func TestPageUp(t *testing.T) {
	s := numberedTable(t, 10, Extent{Width: 20, Height: 5})
	s.Offset.Row = 6
	s.Cursor.Row = 2

	if got := s.MovePageUp(); got != Rerender || s.Offset.Row != 3 {
		t.Fatalf("got %v offset %d", got, s.Offset.Row)
	}
	if got := s.MovePageUp(); got != Rerender || s.Offset.Row != 0 {
		t.Fatalf("got %v offset %d", got, s.Offset.Row)
	}
	if got := s.MovePageUp(); got != MoveCursor || s.Cursor.Row != 0 {
		t.Fatalf("got %v cursor %d", got, s.Cursor.Row)
	}
	if got := s.MovePageUp(); got != None {
		t.Fatalf("got %v, want None", got)
	}
}

func TestHomeEnd(t *testing.T) {
	s := smallTable(t)

	if got := s.MoveEnd(); got != Rerender {
		t.Fatalf("got %v", got)
	}
	if s.Offset.Row != 2 || s.Cursor.Row != 3 {
		t.Fatalf("end: offset %d cursor %d", s.Offset.Row, s.Cursor.Row)
	}
	end := *s
	s.MoveEnd()
	if s.Offset != end.Offset || s.Cursor != end.Cursor {
		t.Fatal("MoveEnd is not idempotent")
	}

	s.MoveHome()
	if s.Offset.Row != 0 || s.Cursor.Row != 0 {
		t.Fatalf("home: offset %d cursor %d", s.Offset.Row, s.Cursor.Row)
	}
	home := *s
	if got := s.MoveHome(); got != Rerender || s.Offset != home.Offset || s.Cursor != home.Cursor {
		t.Fatal("MoveHome is not idempotent")
	}
}

func TestMoveEnd_AllRowsFit(t *testing.T) {
	s := numberedTable(t, 2, Extent{Width: 20, Height: 10})
	s.MoveEnd()
	if s.Offset.Row != 0 || s.Cursor.Row != 2 {
		t.Errorf("offset %d cursor %d, want 0 and 2", s.Offset.Row, s.Cursor.Row)
	}
}

func TestEmptyGrid_VerticalMovesAreNoOps(t *testing.T) {
	s := numberedTable(t, 0, Extent{Width: 20, Height: 5})
	for name, op := range map[string]func() Signal{
		"down":     s.MoveDown,
		"up":       s.MoveUp,
		"pagedown": s.MovePageDown,
		"pageup":   s.MovePageUp,
	} {
		if got := op(); got != None {
			t.Errorf("%s: got %v, want None", name, got)
		}
	}
	s.MoveEnd()
	s.MoveHome()
	if s.Offset != (Coord{}) || s.Cursor != (Coord{}) {
		t.Errorf("state changed: offset %+v cursor %+v", s.Offset, s.Cursor)
	}
}

func TestMoveRight_ScrollsByWidth(t *testing.T) {
	s := smallTable(t)

	steps := []struct {
		want      Signal
		offsetCol int
		cursorCol int
	}{
		{MoveCursor, 0, 1},
		{Rerender, 1, 1},
		{Rerender, 2, 1},
		{None, 2, 1},
	}
	for i, step := range steps {
		if got := s.MoveRight(); got != step.want {
			t.Fatalf("move %d: got %v, want %v", i+1, got, step.want)
		}
		if s.Offset.Col != step.offsetCol || s.Cursor.Col != step.cursorCol {
			t.Fatalf("move %d: offset %d cursor %d, want %d and %d",
				i+1, s.Offset.Col, s.Cursor.Col, step.offsetCol, step.cursorCol)
		}
	}
	if s.CurrentColumn() != 3 {
		t.Errorf("current column %d, want 3", s.CurrentColumn())
	}
}

func TestMoveLeft(t *testing.T) {
	s := smallTable(t)
	s.Offset.Col = 2
	s.Cursor.Col = 1

	want := []Signal{MoveCursor, Rerender, Rerender, None}
	for i, w := range want {
		if got := s.MoveLeft(); got != w {
			t.Fatalf("move %d: got %v, want %v", i+1, got, w)
		}
	}
	if s.Offset.Col != 0 || s.Cursor.Col != 0 {
		t.Errorf("offset %d cursor %d, want 0 and 0", s.Offset.Col, s.Cursor.Col)
	}
}

func TestStartEndOfLine(t *testing.T) {
	s := smallTable(t)

	if got := s.MoveEndOfLine(); got != Rerender {
		t.Fatalf("got %v", got)
	}
	if s.Offset.Col != 2 || s.Cursor.Col != 1 {
		t.Fatalf("end of line: offset %d cursor %d", s.Offset.Col, s.Cursor.Col)
	}
	if !s.LastColumnVisible() {
		t.Error("last column should be visible")
	}
	s.MoveEndOfLine()
	if s.Offset.Col != 2 || s.Cursor.Col != 1 {
		t.Fatal("MoveEndOfLine is not idempotent")
	}

	if got := s.MoveStartOfLine(); got != Rerender {
		t.Fatalf("got %v, want Rerender", got)
	}
	if got := s.MoveStartOfLine(); got != MoveCursor {
		t.Fatalf("second start of line: got %v, want MoveCursor", got)
	}
	if s.Offset.Col != 0 || s.Cursor.Col != 0 {
		t.Fatalf("start of line: offset %d cursor %d", s.Offset.Col, s.Cursor.Col)
	}
}

func TestMoveEndOfLine_AllColumnsFit(t *testing.T) {
	s := numberedTable(t, 2, Extent{Width: 80, Height: 5})
	s.MoveEndOfLine()
	if s.Offset.Col != 0 || s.Cursor.Col != 1 {
		t.Errorf("offset %d cursor %d, want 0 and 1", s.Offset.Col, s.Cursor.Col)
	}
}

func TestInvariants_RandomOperations(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 7, 25} {
		for _, ext := range []Extent{{9, 4}, {4, 2}, {30, 8}, {1, 1}} {
			s := numberedTable(t, n, ext)
			ops := []func() Signal{
				s.MoveDown, s.MoveUp, s.MovePageDown, s.MovePageUp,
				s.MoveHome, s.MoveEnd, s.MoveLeft, s.MoveRight,
				s.MoveStartOfLine, s.MoveEndOfLine, s.RepeatSearch,
				func() Signal { return s.Ascending(s.CurrentColumn()) },
				func() Signal { return s.Descending(s.CurrentColumn()) },
				func() Signal { return s.Search("1") },
			}
			r := rand.New(rand.NewPCG(uint64(n), uint64(ext.Width)))
			for i := 0; i < 500; i++ {
				op := r.IntN(len(ops))
				ops[op]()
				checkInvariants(t, s, "rows="+strconv.Itoa(n)+" op="+strconv.Itoa(op))
			}
		}
	}
}

func TestSort_RestoreOrder(t *testing.T) {
	s := smallTable(t)
	original := rowNumbers(s)

	if got := s.Descending(2); got != Rerender {
		t.Fatalf("got %v", got)
	}
	if first := s.Grid.Rows[0][2]; first != "5bb" {
		t.Fatalf("descending first row = %q, want 5bb", first)
	}
	s.Ascending(1)
	s.RestoreOrder()
	if got := rowNumbers(s); !reflect.DeepEqual(got, original) {
		t.Errorf("row order = %v, want %v", got, original)
	}
}

func TestSort_RowNumbersAreNumeric(t *testing.T) {
	s := numberedTable(t, 12, Extent{Width: 20, Height: 5})
	s.Descending(0)
	if s.Grid.Rows[0][0] != "12" || s.Grid.Rows[11][0] != "1" {
		t.Fatalf("descending by row number: %v", rowNumbers(s))
	}
	s.Ascending(0)
	if s.Grid.Rows[1][0] != "2" {
		t.Errorf("ascending by row number sorted as text: %v", rowNumbers(s))
	}
}

func TestSort_Stable(t *testing.T) {
	g, err := grid.Numbered([]string{"k"}, [][]string{{"b"}, {"a"}, {"b"}, {"a"}})
	if err != nil {
		t.Fatal(err)
	}
	s := New(g, Extent{Width: 20, Height: 5})
	s.Ascending(1)
	if got := rowNumbers(s); !reflect.DeepEqual(got, []string{"2", "4", "1", "3"}) {
		t.Errorf("ascending order = %v", got)
	}
	s.RestoreOrder()
	s.Descending(1)
	if got := rowNumbers(s); !reflect.DeepEqual(got, []string{"1", "3", "2", "4"}) {
		t.Errorf("descending order = %v", got)
	}
}

func TestSort_LeavesViewportAlone(t *testing.T) {
	s := smallTable(t)
	s.Offset.Row = 1
	s.Cursor = Coord{Row: 2, Col: 1}
	s.Descending(1)
	if s.Offset.Row != 1 || s.Cursor != (Coord{Row: 2, Col: 1}) {
		t.Errorf("sort moved the viewport: offset %+v cursor %+v", s.Offset, s.Cursor)
	}
}

func TestSort_CorruptRowNumberPanics(t *testing.T) {
	s := smallTable(t)
	s.Grid.Rows[2][0] = "x"
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-numeric row number")
		}
	}()
	s.Ascending(0)
}

func TestSignalString(t *testing.T) {
	if MoveCursor.String() != "MoveCursor" || Signal(42).String() != "Signal(?)" {
		t.Errorf("unexpected names: %v %v", MoveCursor, Signal(42))
	}
}
