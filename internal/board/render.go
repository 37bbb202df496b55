package board

import "image/color"

// Surface is a 2D drawing target with a fixed pixel size.
type Surface interface {
	Size() (width, height float64)
	Fill(c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
}

type Theme struct {
	Background color.Color
	Line       color.Color
	LineWidth  float64
	White      color.Color
	Black      color.Color
}

func DefaultTheme() Theme {
	return Theme{
		Background: color.NRGBA{R: 0x00, G: 0x4e, B: 0x2d, A: 0xff},
		Line:       color.White,
		LineWidth:  1,
		White:      color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Black:      color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	}
}

// FrameStats counts the primitives drawn by one [Render] call.
type FrameStats struct {
	Lines     int
	Tokens    int
	Anomalies int
}

// Render repaints the whole surface: background, cols-1 vertical and rows-1
// horizontal separators, then one disc per White or Black cell. Cells with
// unknown values are left empty and counted as anomalies.
func Render(s Surface, g Grid, t Theme) FrameStats {
	var stats FrameStats

	w, h := s.Size()
	s.Fill(t.Background)

	l := Layout{Width: w, Height: h, Cols: g.Cols(), Rows: g.Rows()}
	if !l.valid() {
		return stats
	}
	cw, ch := l.CellSize()

	for x := 1; x < l.Cols; x++ {
		px := float64(x) * cw
		s.StrokeLine(px, 0, px, h, t.LineWidth, t.Line)
		stats.Lines++
	}
	for y := 1; y < l.Rows; y++ {
		py := float64(y) * ch
		s.StrokeLine(0, py, w, py, t.LineWidth, t.Line)
		stats.Lines++
	}

	r := l.TokenRadius()
	for row := range l.Rows {
		for col := range l.Cols {
			c := Cell{Col: col, Row: row}
			var fill color.Color
			switch g.At(c) {
			case Empty:
				continue
			case White:
				fill = t.White
			case Black:
				fill = t.Black
			default:
				stats.Anomalies++
				continue
			}
			center := l.Center(c)
			s.FillCircle(center.X, center.Y, r, fill)
			stats.Tokens++
		}
	}
	return stats
}
