package board

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type Phase int32

const (
	Uninitialized Phase = iota
	Bound
	TornDown
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Bound:
		return "bound"
	case TornDown:
		return "torn down"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

var (
	ErrNotInitialized = errors.New("board controller is not initialized")
	ErrTornDown       = errors.New("board controller is torn down")
	ErrAlreadyBound   = errors.New("board controller is already bound")
)

// Scheduler runs fn once on the next frame. It must not call fn before
// RequestFrame returns. cancel drops the request if it has not run yet.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Host is the environment a [Controller] binds to: a drawing surface, the
// clicks made on it and a frame scheduler.
type Host interface {
	Scheduler
	// Surface returns the drawing target; ok is false while it does not
	// exist yet or has already been released.
	Surface() (s Surface, ok bool)
	// OnClick registers fn for clicks on the surface, in surface pixels.
	OnClick(fn func(Point)) (remove func())
}

type listener struct {
	id uint64
	fn func(Cell)
}

// Counters reports render loop activity.
type Counters struct {
	Frames  uint64
	Skipped uint64
}

// Controller owns one board's state, routes surface clicks to cell
// listeners and keeps a render loop running while bound.
//
// A controller moves Uninitialized -> Bound -> TornDown and never back; a
// new game session gets a new controller.
type Controller struct {
	theme Theme
	log   logrus.FieldLogger

	grid atomic.Pointer[Grid]

	mu          sync.Mutex
	phase       Phase
	host        Host
	cols, rows  int
	listeners   []listener
	nextID      uint64
	removeClick func()
	cancelFrame func()

	frames  atomic.Uint64
	skipped atomic.Uint64
}

func NewController(theme Theme, log logrus.FieldLogger) *Controller {
	return &Controller{theme: theme, log: log}
}

// Initialize binds the controller to host with a cols x rows grid and starts
// the render loop. A zero initial grid means all cells are empty.
func (c *Controller) Initialize(host Host, cols, rows int, initial Grid) error {
	if host == nil {
		return errors.New("board controller needs a host")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case Bound:
		return ErrAlreadyBound
	case TornDown:
		return ErrTornDown
	}

	grid := initial
	if grid.IsZero() {
		var err error
		if grid, err = NewGrid(cols, rows); err != nil {
			return err
		}
	} else if !grid.SameShape(cols, rows) {
		return fmt.Errorf("%w: initial grid is %dx%d, board is %dx%d",
			ErrInvalidStateShape, grid.Cols(), grid.Rows(), cols, rows)
	}

	c.grid.Store(&grid)
	c.host = host
	c.cols, c.rows = cols, rows
	c.phase = Bound
	c.removeClick = host.OnClick(c.handleClick)
	c.cancelFrame = host.RequestFrame(c.frame)

	c.log.WithFields(logrus.Fields{"cols": cols, "rows": rows}).Debug("board bound")
	return nil
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) checkBound() error {
	switch c.phase {
	case Uninitialized:
		return ErrNotInitialized
	case TornDown:
		return ErrTornDown
	}
	return nil
}

// SetState replaces the whole grid. A grid of a different shape is rejected
// with [ErrInvalidStateShape] and the previous grid stays in place.
func (c *Controller) SetState(g Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkBound(); err != nil {
		return err
	}
	if g.IsZero() || !g.SameShape(c.cols, c.rows) {
		return fmt.Errorf("%w: got %dx%d, board is %dx%d",
			ErrInvalidStateShape, g.Cols(), g.Rows(), c.cols, c.rows)
	}
	if n := g.Anomalies(); n > 0 {
		c.log.WithField("cells", n).Warn("board state has unknown cell values")
	}
	c.grid.Store(&g)
	return nil
}

// State returns the grid currently drawn. A torn down controller still
// reports its last grid.
func (c *Controller) State() (Grid, error) {
	g := c.grid.Load()
	if g == nil {
		return Grid{}, ErrNotInitialized
	}
	return *g, nil
}

// OnCellClicked adds fn to the listeners notified with every in-bounds cell
// resolved from a surface click. The returned func removes exactly this
// listener and may be called more than once.
func (c *Controller) OnCellClicked(fn func(Cell)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkBound(); err != nil {
		return nil, err
	}
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}, nil
}

// Teardown stops the render loop and drops the click binding and all
// listeners. Calling it again does nothing.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == TornDown {
		return
	}
	wasBound := c.phase == Bound
	c.phase = TornDown

	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	if c.removeClick != nil {
		c.removeClick()
		c.removeClick = nil
	}
	c.listeners = nil
	c.host = nil

	if wasBound {
		c.log.WithFields(logrus.Fields{
			"frames":  c.frames.Load(),
			"skipped": c.skipped.Load(),
		}).Debug("board torn down")
	}
}

func (c *Controller) Stats() Counters {
	return Counters{Frames: c.frames.Load(), Skipped: c.skipped.Load()}
}

func (c *Controller) frame() {
	c.mu.Lock()
	host := c.host
	bound := c.phase == Bound
	c.mu.Unlock()
	if !bound {
		return
	}

	if s, ok := host.Surface(); ok {
		Render(s, *c.grid.Load(), c.theme)
		c.frames.Add(1)
	} else {
		c.skipped.Add(1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == Bound {
		c.cancelFrame = host.RequestFrame(c.frame)
	}
}

func (c *Controller) handleClick(p Point) {
	c.mu.Lock()
	if c.phase != Bound {
		c.mu.Unlock()
		return
	}
	host := c.host
	cols, rows := c.cols, c.rows
	fns := make([]func(Cell), len(c.listeners))
	for i, l := range c.listeners {
		fns[i] = l.fn
	}
	c.mu.Unlock()

	s, ok := host.Surface()
	if !ok {
		return
	}
	w, h := s.Size()
	cell, ok := ToCell(p, w, h, cols, rows)
	if !ok {
		return
	}
	for _, fn := range fns {
		fn(cell)
	}
}
