package board

import (
	"errors"
	"fmt"
	"strings"
)

type CellState int

const (
	Empty CellState = 0
	White CellState = 1
	Black CellState = 2

	// Unknown stands in for a value too large to hold.
	Unknown CellState = -1
)

func (s CellState) String() string {
	switch s {
	case Empty:
		return "."
	case White:
		return "o"
	case Black:
		return "x"
	default:
		return "?"
	}
}

// Known reports whether s is one of Empty, White or Black.
func (s CellState) Known() bool {
	return s == Empty || s == White || s == Black
}

var (
	ErrInvalidStateShape = errors.New("invalid state shape")
	ErrInvalidCellValue  = errors.New("invalid cell value")
)

// Grid is an immutable rows x cols matrix of cell states, row-major.
// The zero Grid has no cells.
type Grid struct {
	rows, cols int
	cells      []CellState
}

func NewGrid(cols, rows int) (Grid, error) {
	if cols <= 0 || rows <= 0 {
		return Grid{}, fmt.Errorf("%w: %dx%d", ErrInvalidStateShape, cols, rows)
	}
	return Grid{rows: rows, cols: cols, cells: make([]CellState, rows*cols)}, nil
}

// GridFromRows copies a row-major matrix of raw values. Every row must have
// the same non-zero length. Values outside the known states are kept as-is
// and reported by [Grid.Anomalies].
func GridFromRows(rows [][]int) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, fmt.Errorf("%w: empty matrix", ErrInvalidStateShape)
	}
	cols := len(rows[0])
	g := Grid{rows: len(rows), cols: cols, cells: make([]CellState, len(rows)*cols)}
	for y, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidStateShape, y, len(row), cols)
		}
		for x, v := range row {
			g.cells[y*cols+x] = CellState(v)
		}
	}
	return g, nil
}

// StartingGrid returns the standard 8x8 opening: white on (3,3) and (4,4),
// black on (3,4) and (4,3).
func StartingGrid() Grid {
	g, _ := GridFromRows([][]int{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 1, 2, 0, 0, 0},
		{0, 0, 0, 2, 1, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0},
	})
	return g
}

func (g Grid) Rows() int { return g.rows }
func (g Grid) Cols() int { return g.cols }

func (g Grid) IsZero() bool { return g.cells == nil }

func (g Grid) SameShape(cols, rows int) bool {
	return g.cols == cols && g.rows == rows
}

// At returns the state of cell c, or Empty when c is out of range.
func (g Grid) At(c Cell) CellState {
	if !g.Contains(c) {
		return Empty
	}
	return g.cells[c.Row*g.cols+c.Col]
}

func (g Grid) Contains(c Cell) bool {
	return 0 <= c.Col && c.Col < g.cols && 0 <= c.Row && c.Row < g.rows
}

// Count returns the number of cells holding s.
func (g Grid) Count(s CellState) int {
	n := 0
	for _, v := range g.cells {
		if v == s {
			n++
		}
	}
	return n
}

// Anomalies returns the number of cells whose value is not a known state.
func (g Grid) Anomalies() int {
	n := 0
	for _, v := range g.cells {
		if !v.Known() {
			n++
		}
	}
	return n
}

func (g Grid) Matrix() [][]int {
	m := make([][]int, g.rows)
	for y := range g.rows {
		m[y] = make([]int, g.cols)
		for x := range g.cols {
			m[y][x] = int(g.cells[y*g.cols+x])
		}
	}
	return m
}

func (g Grid) String() string {
	var b strings.Builder
	for y := range g.rows {
		for x := range g.cols {
			fmt.Fprint(&b, g.cells[y*g.cols+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
