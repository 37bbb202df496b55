package board

import (
	"image/color"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

type circle struct {
	cx, cy, r float64
	c         color.Color
}

type recorder struct {
	w, h    float64
	fills   []color.Color
	lines   [][4]float64
	circles []circle
}

func newRecorder(w, h float64) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Fill(c color.Color) { r.fills = append(r.fills, c) }

func (r *recorder) StrokeLine(x0, y0, x1, y1, _ float64, _ color.Color) {
	r.lines = append(r.lines, [4]float64{x0, y0, x1, y1})
}

func (r *recorder) FillCircle(cx, cy, rad float64, c color.Color) {
	r.circles = append(r.circles, circle{cx, cy, rad, c})
}

func (r *recorder) reset() {
	r.fills, r.lines, r.circles = nil, nil, nil
}

type fakeHost struct {
	surface   *recorder
	available bool
	nextID    int
	pending   map[int]func()
	clicks    map[int]func(Point)
}

func newFakeHost(w, h float64) *fakeHost {
	return &fakeHost{
		surface:   newRecorder(w, h),
		available: true,
		pending:   map[int]func(){},
		clicks:    map[int]func(Point){},
	}
}

func (h *fakeHost) RequestFrame(fn func()) func() {
	h.nextID++
	id := h.nextID
	h.pending[id] = fn
	return func() { delete(h.pending, id) }
}

func (h *fakeHost) Surface() (Surface, bool) {
	if !h.available {
		return nil, false
	}
	return h.surface, true
}

func (h *fakeHost) OnClick(fn func(Point)) func() {
	h.nextID++
	id := h.nextID
	h.clicks[id] = fn
	return func() { delete(h.clicks, id) }
}

// step runs the frame callbacks pending at call time.
func (h *fakeHost) step() {
	ids := make([]int, 0, len(h.pending))
	for id := range h.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.pending[id])
		delete(h.pending, id)
	}
	for _, fn := range fns {
		fn()
	}
}

func (h *fakeHost) click(x, y float64) {
	for _, fn := range h.clicks {
		fn(Point{X: x, Y: y})
	}
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
