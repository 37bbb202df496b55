package lobby

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/reversi-lobby/internal/board"
	"github.com/vancomm/reversi-lobby/internal/protocol"
)

const (
	// MainRoom is where every connection starts; it has no board.
	MainRoom = "Main"
	// DefaultName is the name the server gives a connection that never sent
	// /name.
	DefaultName = "名無し"

	// HistoryLines is how many text lines the lobby keeps.
	HistoryLines = 8
)

var ErrNotInRoom = errors.New("not in a game room")

type View struct {
	Room      string
	Rooms     []string
	Name      string
	LastError string
	// History holds the latest chat lines and notices, oldest first.
	History []string
	// InRoom is set while a room session is active.
	InRoom bool
}

type Options struct {
	Host       board.Host
	Cols, Rows int
	// NewBoard returns a fresh controller for each room session.
	NewBoard func() Board
	// OnChange, when set, is called after the room or name changes.
	OnChange func(View)
}

// Lobby tracks the room list, the current room and the display name, and
// opens a [Room] session whenever the server moves the client into a room
// other than MainRoom.
type Lobby struct {
	bus  Bus
	opts Options
	log  logrus.FieldLogger

	mu        sync.Mutex
	room      string
	rooms     []string
	name      string
	lastError string
	history   []string
	session   *Room
	unsubs    []func()
}

func New(bus Bus, opts Options, log logrus.FieldLogger) *Lobby {
	return &Lobby{
		bus:  bus,
		opts: opts,
		log:  log,
		room: MainRoom,
		name: DefaultName,
	}
}

// Start subscribes to lobby traffic and introduces the client: it asks for
// the room list and the current room and sends the display name.
func (l *Lobby) Start(name string) error {
	if name = strings.TrimSpace(name); name != "" {
		l.mu.Lock()
		l.name = name
		l.mu.Unlock()
	}

	l.mu.Lock()
	l.unsubs = []func(){
		l.bus.Subscribe(protocol.TagList, l.handleList),
		l.bus.Subscribe(protocol.TagRoom, l.handleRoom),
		l.bus.Subscribe(protocol.TagJoin, l.handleRoom),
		l.bus.Subscribe(protocol.TagText, l.handleText),
	}
	name = l.name
	l.mu.Unlock()

	for _, cmd := range []protocol.Command{protocol.List(), protocol.Room(), protocol.Name(name)} {
		if err := l.bus.Send(cmd); err != nil {
			return fmt.Errorf("lobby start: %w", err)
		}
	}
	return nil
}

// Stop drops the lobby subscriptions and closes any room session without
// messaging the server.
func (l *Lobby) Stop() {
	l.mu.Lock()
	unsubs := l.unsubs
	l.unsubs = nil
	room := l.session
	l.session = nil
	l.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if room != nil {
		room.close()
	}
}

func (l *Lobby) RefreshRooms() error { return l.bus.Send(protocol.List()) }

func (l *Lobby) SetName(name string) error {
	name = strings.TrimSpace(name)
	if err := l.bus.Send(protocol.Name(name)); err != nil {
		return err
	}
	l.mu.Lock()
	l.name = name
	l.mu.Unlock()
	l.changed()
	return nil
}

func (l *Lobby) Join(room string) error {
	return l.bus.Send(protocol.Join(strings.TrimSpace(room)))
}

// Leave ends the current room session and returns to MainRoom. The session
// is detached at once; the server's reply only updates the room name.
func (l *Lobby) Leave() error {
	l.mu.Lock()
	room := l.session
	l.session = nil
	l.mu.Unlock()
	if room == nil {
		return ErrNotInRoom
	}
	return room.Leave()
}

// Room returns the active room session, if any.
func (l *Lobby) Room() (*Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session, l.session != nil
}

func (l *Lobby) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *Lobby) viewLocked() View {
	return View{
		Room:      l.room,
		Rooms:     slices.Clone(l.rooms),
		Name:      l.name,
		LastError: l.lastError,
		History:   slices.Clone(l.history),
		InRoom:    l.session != nil,
	}
}

func (l *Lobby) changed() {
	if l.opts.OnChange == nil {
		return
	}
	l.opts.OnChange(l.View())
}

func (l *Lobby) handleList(m protocol.Message) {
	rooms, err := m.DataStrings()
	if err != nil {
		l.log.WithError(err).Warn("bad room list")
		return
	}
	l.mu.Lock()
	l.rooms = rooms
	l.mu.Unlock()
}

func (l *Lobby) handleRoom(m protocol.Message) {
	name, err := m.DataString()
	if err != nil {
		l.log.WithError(err).Warn("bad room message")
		return
	}

	l.mu.Lock()
	prevRoom := l.room
	prev := l.session
	if prev != nil && prev.Name() == name && !prev.Closed() {
		l.mu.Unlock()
		return
	}
	l.room = name
	l.session = nil
	l.mu.Unlock()

	if prev != nil {
		prev.close()
	}
	if name != MainRoom {
		l.enter(name)
	}
	if name != prevRoom {
		l.log.WithFields(logrus.Fields{"from": prevRoom, "to": name}).Info("room changed")
		l.changed()
	}
}

func (l *Lobby) enter(name string) {
	if l.opts.NewBoard == nil || l.opts.Host == nil {
		l.log.WithField("room", name).Warn("no board host, room session not opened")
		return
	}
	room := newRoom(name, l.bus, l.opts.NewBoard(), l.log)
	if err := room.enter(l.opts.Host, l.opts.Cols, l.opts.Rows); err != nil {
		l.log.WithError(err).Error("room session not opened")
		room.close()
		return
	}

	l.mu.Lock()
	stale := l.room != name
	if !stale {
		l.session = room
	}
	l.mu.Unlock()
	if stale {
		room.close()
	}
}

func (l *Lobby) handleText(m protocol.Message) {
	line := strings.TrimSpace(m.Text)
	if line == "" {
		return
	}

	l.mu.Lock()
	l.history = append(l.history, line)
	if n := len(l.history) - HistoryLines; n > 0 {
		l.history = slices.Delete(l.history, 0, n)
	}
	if m.IsError() {
		l.lastError = m.ErrorText()
	}
	l.mu.Unlock()

	if m.IsError() {
		l.log.WithField("error", m.ErrorText()).Warn("server error")
	}
}
