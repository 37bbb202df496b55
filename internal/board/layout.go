package board

import "math"

// Point is a pixel position on a drawing surface.
type Point struct {
	X, Y float64
}

// Cell addresses one board position by column and row; (0,0) is top-left.
type Cell struct {
	Col, Row int
}

// Layout divides a surface of Width x Height pixels into Cols x Rows equal
// cells. Drawing and hit-testing both go through it so they agree on the
// cell size.
type Layout struct {
	Width, Height float64
	Cols, Rows    int
}

func (l Layout) valid() bool {
	return l.Width > 0 && l.Height > 0 && l.Cols > 0 && l.Rows > 0
}

func (l Layout) CellSize() (w, h float64) {
	return l.Width / float64(l.Cols), l.Height / float64(l.Rows)
}

// ToCell resolves a pixel to the cell containing it. Points outside
// [0,Width] x [0,Height] resolve to no cell. The far edges belong to the
// last column and row.
func (l Layout) ToCell(p Point) (Cell, bool) {
	if !l.valid() {
		return Cell{}, false
	}
	if p.X < 0 || p.X > l.Width || p.Y < 0 || p.Y > l.Height {
		return Cell{}, false
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return Cell{}, false
	}
	cw, ch := l.CellSize()
	c := Cell{
		Col: int(math.Floor(p.X / cw)),
		Row: int(math.Floor(p.Y / ch)),
	}
	c.Col = min(c.Col, l.Cols-1)
	c.Row = min(c.Row, l.Rows-1)
	return c, true
}

// Origin returns the top-left pixel of cell c.
func (l Layout) Origin(c Cell) Point {
	cw, ch := l.CellSize()
	return Point{X: float64(c.Col) * cw, Y: float64(c.Row) * ch}
}

// Center returns the centre pixel of cell c.
func (l Layout) Center(c Cell) Point {
	cw, ch := l.CellSize()
	o := l.Origin(c)
	return Point{X: o.X + cw/2, Y: o.Y + ch/2}
}

// TokenRadius is half the smaller cell dimension.
func (l Layout) TokenRadius() float64 {
	cw, ch := l.CellSize()
	return math.Min(cw, ch) / 2
}

// ToCell is the free-standing form of [Layout.ToCell].
func ToCell(p Point, surfaceWidth, surfaceHeight float64, cols, rows int) (Cell, bool) {
	return Layout{Width: surfaceWidth, Height: surfaceHeight, Cols: cols, Rows: rows}.ToCell(p)
}
