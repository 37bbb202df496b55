package session

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/reversi-lobby/internal/protocol"
)

var ErrClosed = errors.New("session is closed")

type Handler func(protocol.Message)

type subscription struct {
	id uint64
	fn Handler
}

// Bridge routes inbound messages to subscribers by tag and queues outbound
// commands for the connection's write loop. Any number of components may
// subscribe to the same tag; each gets its own unsubscribe func.
type Bridge struct {
	log logrus.FieldLogger

	mu     sync.Mutex
	byTag  map[protocol.Tag][]subscription
	all    []subscription
	nextID uint64

	out       chan string
	done      chan struct{}
	closeOnce sync.Once
}

func NewBridge(queue int, log logrus.FieldLogger) *Bridge {
	return &Bridge{
		log:   log,
		byTag: make(map[protocol.Tag][]subscription),
		out:   make(chan string, queue),
		done:  make(chan struct{}),
	}
}

// Subscribe calls h for every message tagged tag. Use [protocol.TagText] for
// plain text notices.
func (b *Bridge) Subscribe(tag protocol.Tag, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.byTag[tag] = append(b.byTag[tag], subscription{id: id, fn: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byTag[tag] = remove(b.byTag[tag], id)
		if len(b.byTag[tag]) == 0 {
			delete(b.byTag, tag)
		}
	}
}

// SubscribeAll calls h for every inbound message.
func (b *Bridge) SubscribeAll(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, fn: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

func remove(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// Publish delivers m to the subscribers registered at call time. Handlers
// run on the caller's goroutine, outside the bridge lock, so they may
// subscribe, unsubscribe or send.
func (b *Bridge) Publish(m protocol.Message) {
	b.mu.Lock()
	tagged := b.byTag[m.Cmd]
	handlers := make([]Handler, 0, len(tagged)+len(b.all))
	for _, s := range tagged {
		handlers = append(handlers, s.fn)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.fn)
	}
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.log.WithField("cmd", string(m.Cmd)).Debug("no subscribers for message")
		return
	}
	for _, h := range handlers {
		h(m)
	}
}

// Send queues cmd for the write loop. It blocks while the queue is full and
// fails with ErrClosed once the bridge is closed.
func (b *Bridge) Send(cmd protocol.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.out <- cmd.String():
		b.log.WithField("line", cmd.String()).Debug("command queued")
		return nil
	case <-b.done:
		return ErrClosed
	}
}

// Outbox yields queued command lines in send order.
func (b *Bridge) Outbox() <-chan string { return b.out }

// Done is closed by Close.
func (b *Bridge) Done() <-chan struct{} { return b.done }

func (b *Bridge) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
