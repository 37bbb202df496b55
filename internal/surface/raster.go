package surface

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// Raster is an in-memory [board.Surface] painted with draw2d.
type Raster struct {
	img *image.RGBA
	gc  *draw2dimg.GraphicContext
}

func NewRaster(width, height int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Raster{img: img, gc: draw2dimg.NewGraphicContext(img)}
}

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (r *Raster) Fill(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	r.gc.SetStrokeColor(c)
	r.gc.SetLineWidth(width)
	r.gc.BeginPath()
	r.gc.MoveTo(x0, y0)
	r.gc.LineTo(x1, y1)
	r.gc.Stroke()
}

func (r *Raster) FillCircle(cx, cy, radius float64, c color.Color) {
	if radius <= 0 || math.IsNaN(radius) {
		return
	}
	r.gc.SetFillColor(c)
	r.gc.BeginPath()
	draw2dkit.Circle(r.gc, cx, cy, radius)
	r.gc.Fill()
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) SavePNG(path string) error {
	return draw2dimg.SaveToPngFile(path, r.img)
}
