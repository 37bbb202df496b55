package lobby

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/reversi-lobby/internal/board"
	"github.com/vancomm/reversi-lobby/internal/protocol"
	"github.com/vancomm/reversi-lobby/internal/session"
)

// Board is the part of [board.Controller] a room drives.
type Board interface {
	Initialize(host board.Host, cols, rows int, initial board.Grid) error
	SetState(g board.Grid) error
	State() (board.Grid, error)
	OnCellClicked(fn func(board.Cell)) (func(), error)
	Teardown()
}

// Bus is the session a lobby or room talks through; *session.Bridge
// implements it.
type Bus interface {
	Subscribe(tag protocol.Tag, h session.Handler) (unsubscribe func())
	Send(cmd protocol.Command) error
}

var ErrLeft = errors.New("room session has ended")

type RoomView struct {
	Name         string
	Members      []string
	Player1      string
	Player2      string
	Started      bool
	StartFailure string
	LastError    string
	Grid         board.Grid
}

// Room is the client side of one game room: its member list, the two seats
// and a board controller that lives exactly as long as the room session.
type Room struct {
	name  string
	bus   Bus
	board Board
	log   logrus.FieldLogger

	mu           sync.Mutex
	members      []string
	player1      string
	player2      string
	started      bool
	startFailure string
	lastError    string
	left         bool
	unsubs       []func()
}

func newRoom(name string, bus Bus, b Board, log logrus.FieldLogger) *Room {
	return &Room{
		name:  name,
		bus:   bus,
		board: b,
		log:   log.WithField("room", name),
	}
}

// enter binds the board to host, subscribes to room traffic and asks for
// the member list.
func (r *Room) enter(host board.Host, cols, rows int) error {
	var initial board.Grid
	if start := board.StartingGrid(); start.SameShape(cols, rows) {
		initial = start
	}
	if err := r.board.Initialize(host, cols, rows, initial); err != nil {
		return fmt.Errorf("room %s: %w", r.name, err)
	}
	unclick, err := r.board.OnCellClicked(r.place)
	if err != nil {
		r.board.Teardown()
		return fmt.Errorf("room %s: %w", r.name, err)
	}

	r.mu.Lock()
	r.unsubs = []func(){
		unclick,
		r.bus.Subscribe(protocol.TagMembers, r.handleMembers),
		r.bus.Subscribe(protocol.TagStart, r.handleStart),
		r.bus.Subscribe(protocol.TagBoard, r.handleBoard),
		r.bus.Subscribe(protocol.TagRegisteredPlayer1, r.handleRegistered),
		r.bus.Subscribe(protocol.TagRegisteredPlayer2, r.handleRegistered),
		r.bus.Subscribe(protocol.TagText, r.handleText),
	}
	r.mu.Unlock()

	r.log.Info("entered room")
	return r.bus.Send(protocol.Members())
}

func (r *Room) Name() string { return r.name }

// RegisterPlayer claims seat 1 or 2.
func (r *Room) RegisterPlayer(seat int) error {
	if seat != 1 && seat != 2 {
		return fmt.Errorf("%w: seat must be 1 or 2, got %d", protocol.ErrBadArgs, seat)
	}
	return r.send(protocol.Regist(seat))
}

func (r *Room) StartGame() error { return r.send(protocol.Start()) }

// Put asks the server to place a token on c. Only cells outside the board
// are refused here.
func (r *Room) Put(c board.Cell) error {
	if g, err := r.board.State(); err == nil && !g.Contains(c) {
		return fmt.Errorf("%w: cell %d,%d is off the %dx%d board",
			protocol.ErrBadArgs, c.Col, c.Row, g.Cols(), g.Rows())
	}
	return r.send(protocol.Put(c))
}

func (r *Room) Say(text string) error { return r.send(protocol.Chat(text)) }

// Leave ends the room session and moves back to the main room.
func (r *Room) Leave() error {
	if !r.close() {
		return ErrLeft
	}
	return r.bus.Send(protocol.Join(MainRoom))
}

// close tears the session down without telling the server; it reports
// whether this call did the work.
func (r *Room) close() bool {
	r.mu.Lock()
	if r.left {
		r.mu.Unlock()
		return false
	}
	r.left = true
	unsubs := r.unsubs
	r.unsubs = nil
	r.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	r.board.Teardown()
	r.log.Info("left room")
	return true
}

// Closed reports whether the session has ended.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.left
}

func (r *Room) send(cmd protocol.Command) error {
	r.mu.Lock()
	left := r.left
	r.mu.Unlock()
	if left {
		return ErrLeft
	}
	return r.bus.Send(cmd)
}

func (r *Room) View() RoomView {
	r.mu.Lock()
	v := RoomView{
		Name:         r.name,
		Members:      slices.Clone(r.members),
		Player1:      r.player1,
		Player2:      r.player2,
		Started:      r.started,
		StartFailure: r.startFailure,
		LastError:    r.lastError,
	}
	r.mu.Unlock()

	if g, err := r.board.State(); err == nil {
		v.Grid = g
	}
	return v
}

// place forwards a clicked cell to the server; legality is the server's call.
func (r *Room) place(c board.Cell) {
	if err := r.Put(c); err != nil {
		r.log.WithError(err).Warn("put not sent")
	}
}

func (r *Room) handleMembers(m protocol.Message) {
	members, err := m.DataStrings()
	if err != nil {
		r.log.WithError(err).Warn("bad members message")
		return
	}
	r.mu.Lock()
	r.members = members
	r.mu.Unlock()
}

func (r *Room) handleStart(m protocol.Message) {
	if m.Failed() {
		reason, err := m.DataString()
		if err != nil {
			reason = "start failed"
		}
		r.mu.Lock()
		r.startFailure = reason
		r.mu.Unlock()
		r.log.WithField("reason", reason).Info("start refused")
		return
	}
	// the requester also gets a plain acknowledgement; only the broadcast
	// carries the board
	if !m.IsMatrix() {
		return
	}
	if !r.applyBoard(m) {
		return
	}
	r.mu.Lock()
	r.started = true
	r.startFailure = ""
	r.mu.Unlock()
	r.log.Info("game started")
}

func (r *Room) handleBoard(m protocol.Message) {
	r.applyBoard(m)
}

func (r *Room) applyBoard(m protocol.Message) bool {
	g, err := m.Grid()
	if err == nil {
		err = r.board.SetState(g)
	}
	if err != nil {
		r.log.WithError(err).WithField("cmd", string(m.Cmd)).Warn("board snapshot dropped")
		return false
	}
	return true
}

func (r *Room) handleRegistered(m protocol.Message) {
	name, err := m.DataString()
	if err != nil {
		r.log.WithError(err).Warn("bad registration message")
		return
	}
	r.mu.Lock()
	if m.Cmd == protocol.TagRegisteredPlayer1 {
		r.player1 = name
	} else {
		r.player2 = name
	}
	r.mu.Unlock()
}

func (r *Room) handleText(m protocol.Message) {
	switch {
	case m.IsMembershipChange():
		if err := r.send(protocol.Members()); err != nil {
			r.log.WithError(err).Warn("members refresh not sent")
		}
	case m.IsError():
		r.mu.Lock()
		r.lastError = m.ErrorText()
		r.mu.Unlock()
	}
}
