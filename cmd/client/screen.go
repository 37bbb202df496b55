package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// imageSurface draws the board into a rectangle of the ebiten screen.
// Coordinates are board-local; the sub-image keeps the screen's, so every
// primitive is shifted by origin.
type imageSurface struct {
	img    *ebiten.Image
	origin image.Point
	w, h   float64
}

func newImageSurface(screen *ebiten.Image, r image.Rectangle) *imageSurface {
	sub := screen.SubImage(r).(*ebiten.Image)
	b := sub.Bounds()
	return &imageSurface{
		img:    sub,
		origin: b.Min,
		w:      float64(b.Dx()),
		h:      float64(b.Dy()),
	}
}

func (s *imageSurface) Size() (float64, float64) { return s.w, s.h }

func (s *imageSurface) Fill(c color.Color) { s.img.Fill(c) }

func (s *imageSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	ox, oy := float64(s.origin.X), float64(s.origin.Y)
	vector.StrokeLine(s.img,
		float32(ox+x0), float32(oy+y0), float32(ox+x1), float32(oy+y1),
		float32(width), c, true)
}

func (s *imageSurface) FillCircle(cx, cy, r float64, c color.Color) {
	ox, oy := float64(s.origin.X), float64(s.origin.Y)
	vector.DrawFilledCircle(s.img, float32(ox+cx), float32(oy+cy), float32(r), c, true)
}
