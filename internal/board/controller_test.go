package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupController(t *testing.T, w, h float64) (*Controller, *fakeHost) {
	t.Helper()
	host := newFakeHost(w, h)
	c := NewController(DefaultTheme(), testLogger())
	require.NoError(t, c.Initialize(host, 8, 8, Grid{}))
	t.Cleanup(c.Teardown)
	return c, host
}

func TestControllerBeforeInitialize(t *testing.T) {
	c := NewController(DefaultTheme(), testLogger())

	assert.Equal(t, Uninitialized, c.Phase())
	_, err := c.State()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, c.SetState(StartingGrid()), ErrNotInitialized)
	_, err = c.OnCellClicked(func(Cell) {})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestControllerInitializeEmpty(t *testing.T) {
	c, host := setupController(t, 800, 800)

	assert.Equal(t, Bound, c.Phase())
	g, err := c.State()
	require.NoError(t, err)
	assert.True(t, g.SameShape(8, 8))
	assert.Equal(t, 64, g.Count(Empty))
	assert.Len(t, host.pending, 1, "first frame is scheduled")
	assert.Len(t, host.clicks, 1)
}

func TestControllerInitializeTwice(t *testing.T) {
	c, host := setupController(t, 800, 800)
	assert.ErrorIs(t, c.Initialize(host, 8, 8, Grid{}), ErrAlreadyBound)
}

func TestControllerInitializeRejectsShape(t *testing.T) {
	c := NewController(DefaultTheme(), testLogger())
	g, err := NewGrid(7, 8)
	require.NoError(t, err)

	err = c.Initialize(newFakeHost(800, 800), 8, 8, g)
	assert.ErrorIs(t, err, ErrInvalidStateShape)
	assert.Equal(t, Uninitialized, c.Phase())
}

func TestControllerSetState(t *testing.T) {
	c, _ := setupController(t, 800, 800)

	require.NoError(t, c.SetState(StartingGrid()))
	g, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, StartingGrid(), g)
}

func TestControllerSetStateRejectsShapeAndKeepsPrevious(t *testing.T) {
	c, host := setupController(t, 800, 800)
	require.NoError(t, c.SetState(StartingGrid()))

	bad, err := NewGrid(7, 8)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetState(bad), ErrInvalidStateShape)
	assert.ErrorIs(t, c.SetState(Grid{}), ErrInvalidStateShape)

	g, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, StartingGrid(), g)

	// the next frame still draws the opening position
	host.step()
	assert.Len(t, host.surface.lines, 14)
	assert.Equal(t, []circle{
		{350, 350, 50, DefaultTheme().White},
		{450, 350, 50, DefaultTheme().Black},
		{350, 450, 50, DefaultTheme().Black},
		{450, 450, 50, DefaultTheme().White},
	}, host.surface.circles)
}

func TestControllerFramesRedrawCurrentState(t *testing.T) {
	c, host := setupController(t, 800, 800)

	host.step()
	assert.Empty(t, host.surface.circles)
	assert.Len(t, host.pending, 1, "loop reschedules itself")

	require.NoError(t, c.SetState(StartingGrid()))
	host.surface.reset()
	host.step()
	assert.Len(t, host.surface.circles, 4)
	assert.Len(t, host.surface.lines, 14)

	assert.Equal(t, Counters{Frames: 2}, c.Stats())
}

func TestControllerSkipsFrameWithoutSurface(t *testing.T) {
	c, host := setupController(t, 800, 800)
	host.available = false

	host.step()
	host.step()
	assert.Equal(t, Counters{Skipped: 2}, c.Stats())
	assert.Empty(t, host.surface.fills)
	assert.Len(t, host.pending, 1)

	host.available = true
	host.step()
	assert.Equal(t, Counters{Frames: 1, Skipped: 2}, c.Stats())
}

func TestControllerClickResolvesCell(t *testing.T) {
	c, host := setupController(t, 800, 800)
	require.NoError(t, c.SetState(StartingGrid()))

	var got []Cell
	_, err := c.OnCellClicked(func(cell Cell) { got = append(got, cell) })
	require.NoError(t, err)

	host.click(65, 65)
	host.click(799, 1)
	host.click(-1, 10)
	host.click(10, 801)

	assert.Equal(t, []Cell{{Col: 0, Row: 0}, {Col: 7, Row: 0}}, got)
}

func TestControllerClickFansOutToEveryListener(t *testing.T) {
	c, host := setupController(t, 800, 800)

	var a, b []Cell
	_, err := c.OnCellClicked(func(cell Cell) { a = append(a, cell) })
	require.NoError(t, err)
	_, err = c.OnCellClicked(func(cell Cell) { b = append(b, cell) })
	require.NoError(t, err)

	host.click(450, 350)
	assert.Equal(t, []Cell{{Col: 4, Row: 3}}, a)
	assert.Equal(t, a, b)
}

func TestControllerUnsubscribe(t *testing.T) {
	c, host := setupController(t, 800, 800)

	var a, b int
	removeA, err := c.OnCellClicked(func(Cell) { a++ })
	require.NoError(t, err)
	_, err = c.OnCellClicked(func(Cell) { b++ })
	require.NoError(t, err)

	host.click(10, 10)
	removeA()
	removeA()
	host.click(10, 10)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestControllerListenerMayUnsubscribeItself(t *testing.T) {
	c, host := setupController(t, 800, 800)

	calls := 0
	var remove func()
	remove, err := c.OnCellClicked(func(Cell) {
		calls++
		remove()
	})
	require.NoError(t, err)

	host.click(10, 10)
	host.click(10, 10)
	assert.Equal(t, 1, calls)
}

func TestControllerClickWithoutSurface(t *testing.T) {
	c, host := setupController(t, 800, 800)
	host.available = false

	calls := 0
	_, err := c.OnCellClicked(func(Cell) { calls++ })
	require.NoError(t, err)

	host.click(10, 10)
	assert.Zero(t, calls)
}

func TestControllerTeardown(t *testing.T) {
	c, host := setupController(t, 800, 800)

	calls := 0
	_, err := c.OnCellClicked(func(Cell) { calls++ })
	require.NoError(t, err)

	c.Teardown()
	c.Teardown()

	assert.Equal(t, TornDown, c.Phase())
	assert.Empty(t, host.pending, "pending frame is cancelled")
	assert.Empty(t, host.clicks, "click binding is removed")

	assert.ErrorIs(t, c.SetState(StartingGrid()), ErrTornDown)
	_, err = c.OnCellClicked(func(Cell) {})
	assert.ErrorIs(t, err, ErrTornDown)
	assert.ErrorIs(t, c.Initialize(host, 8, 8, Grid{}), ErrTornDown)

	g, err := c.State()
	require.NoError(t, err)
	assert.True(t, g.SameShape(8, 8))
	assert.Zero(t, calls)
}

func TestControllerTeardownDuringFrame(t *testing.T) {
	host := newFakeHost(800, 800)
	c := NewController(DefaultTheme(), testLogger())
	require.NoError(t, c.Initialize(host, 8, 8, Grid{}))

	// a frame already taken off the queue still runs once, then stops
	host.available = false
	for _, fn := range host.pending {
		c.Teardown()
		fn()
	}
	assert.Empty(t, host.pending)
	assert.Equal(t, Counters{}, c.Stats())
}

func TestControllerTeardownBeforeInitialize(t *testing.T) {
	c := NewController(DefaultTheme(), testLogger())
	c.Teardown()
	assert.Equal(t, TornDown, c.Phase())
	_, err := c.State()
	assert.ErrorIs(t, err, ErrNotInitialized)
}
