package surface

import (
	"image"
	"sync"

	"github.com/vancomm/reversi-lobby/internal/board"
)

type frameRequest struct {
	id uint64
	fn func()
}

// Host adapts a frame-driven window to [board.Host]. The window calls
// RunFrames once per drawn frame with the surface for the board area, and
// Click for every press; the board area sits at Bounds inside the window.
type Host struct {
	mu       sync.Mutex
	bounds   image.Rectangle
	target   board.Surface
	released bool
	nextID   uint64
	frames   []frameRequest
	clicks   map[uint64]func(board.Point)
}

func NewHost(bounds image.Rectangle) *Host {
	return &Host{
		bounds: bounds,
		clicks: make(map[uint64]func(board.Point)),
	}
}

func (h *Host) Bounds() image.Rectangle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bounds
}

// RequestFrame queues fn for the next RunFrames call.
func (h *Host) RequestFrame(fn func()) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return func() {}
	}
	h.nextID++
	id := h.nextID
	h.frames = append(h.frames, frameRequest{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, f := range h.frames {
			if f.id == id {
				h.frames = append(h.frames[:i:i], h.frames[i+1:]...)
				return
			}
		}
	}
}

// Surface returns the surface handed to the last RunFrames call.
func (h *Host) Surface() (board.Surface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released || h.target == nil {
		return nil, false
	}
	return h.target, true
}

func (h *Host) OnClick(fn func(board.Point)) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.clicks[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.clicks, id)
	}
}

// RunFrames makes s the current surface and runs the requests queued so
// far. Requests made while running wait for the next call. It returns the
// number of callbacks run.
func (h *Host) RunFrames(s board.Surface) int {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return 0
	}
	h.target = s
	pending := h.frames
	h.frames = nil
	h.mu.Unlock()

	for _, f := range pending {
		f.fn()
	}
	return len(pending)
}

// Click dispatches a press at window pixel (x, y) in board coordinates.
// Presses outside the board area are still delivered; resolving them to no
// cell is the board's job.
func (h *Host) Click(x, y int) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	p := board.Point{
		X: float64(x - h.bounds.Min.X),
		Y: float64(y - h.bounds.Min.Y),
	}
	fns := make([]func(board.Point), 0, len(h.clicks))
	for _, fn := range h.clicks {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Release drops the surface, the queued frames and all click handlers.
// Later requests are ignored.
func (h *Host) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.target = nil
	h.frames = nil
	clear(h.clicks)
}
