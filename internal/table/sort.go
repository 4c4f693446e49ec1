package table

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Ascending sorts all rows by column col, smallest first. Offsets and
// cursor are left alone, so the same screen position now shows whatever
// row sorted into it.
func (s *State) Ascending(col int) Signal {
	s.sortRows(col, false)
	return Rerender
}

// Descending sorts all rows by column col, largest first.
func (s *State) Descending(col int) Signal {
	s.sortRows(col, true)
	return Rerender
}

// RestoreOrder returns the rows to load order using the row-number column.
func (s *State) RestoreOrder() Signal {
	return s.Ascending(0)
}

func (s *State) sortRows(col int, descending bool) {
	compare := strings.Compare
	if col == 0 {
		compare = compareRowNumbers
	}
	slices.SortStableFunc(s.Grid.Rows, func(a, b []string) int {
		if descending {
			return compare(b[col], a[col])
		}
		return compare(a[col], b[col])
	})
}

// compareRowNumbers orders cells of the row-number column numerically. The
// loader writes those cells, so anything but an integer is a bug.
func compareRowNumbers(a, b string) int {
	return cmp.Compare(mustRowNumber(a), mustRowNumber(b))
}

func mustRowNumber(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("table: row number %q is not an integer", v))
	}
	return n
}
