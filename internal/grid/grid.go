// Package grid holds the tabular data shown by the viewer and loads it from
// delimited text.
package grid

import (
	"errors"
	"fmt"
	"strconv"
)

// RowNumberHeader is the header of the synthetic first column.
const RowNumberHeader = "#"

var (
	// ErrEmptyInput is returned when the input has no header record.
	ErrEmptyInput = errors.New("no header record")
	// ErrRowTooLong is returned when a record has more fields than the header.
	ErrRowTooLong = errors.New("record has more fields than the header")
)

// Grid is a header row and an ordered list of data rows. Every row has
// exactly as many cells as the header, and column 0 always holds the
// 1-based row number assigned at load time.
type Grid struct {
	Header []string
	Rows   [][]string
}

// New validates header and rows and wraps them in a Grid. The slices are
// used as-is, not copied.
func New(header []string, rows [][]string) (*Grid, error) {
	if len(header) == 0 {
		return nil, ErrEmptyInput
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(header))
		}
	}
	return &Grid{Header: header, Rows: rows}, nil
}

// Numbered prepends the row-number column to header and rows, then builds
// the Grid. Rows shorter than the header are padded with empty cells.
func Numbered(header []string, rows [][]string) (*Grid, error) {
	if len(header) == 0 {
		return nil, ErrEmptyInput
	}
	h := make([]string, 0, len(header)+1)
	h = append(h, RowNumberHeader)
	h = append(h, header...)

	numbered := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrRowTooLong)
		}
		r := make([]string, len(h))
		r[0] = strconv.Itoa(i + 1)
		copy(r[1:], row)
		numbered[i] = r
	}
	return New(h, numbered)
}

// Columns returns the number of columns, row-number column included.
func (g *Grid) Columns() int {
	return len(g.Header)
}

// Len returns the number of data rows.
func (g *Grid) Len() int {
	return len(g.Rows)
}

// Clone returns a copy whose row order can be changed independently.
// Cell strings are shared.
func (g *Grid) Clone() *Grid {
	rows := make([][]string, len(g.Rows))
	copy(rows, g.Rows)
	header := make([]string, len(g.Header))
	copy(header, g.Header)
	return &Grid{Header: header, Rows: rows}
}
