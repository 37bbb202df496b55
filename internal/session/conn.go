package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/reversi-lobby/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Conn pumps one websocket connection through a [Bridge]: inbound frames are
// decoded and published, queued commands are written as text frames.
type Conn struct {
	ws      *websocket.Conn
	bridge  *Bridge
	log     logrus.FieldLogger
	closing atomic.Bool
}

func Dial(
	ctx context.Context,
	dialer *websocket.Dialer,
	url string,
	bridge *Bridge,
	log logrus.FieldLogger,
) (*Conn, error) {
	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.WithField("url", url).Info("connected")
	return NewConn(ws, bridge, log), nil
}

func NewConn(ws *websocket.Conn, bridge *Bridge, log logrus.FieldLogger) *Conn {
	return &Conn{ws: ws, bridge: bridge, log: log}
}

// Run blocks until the connection ends: the server closes it, ctx is
// cancelled or the bridge is closed. The bridge is closed on return.
func (c *Conn) Run(ctx context.Context) error {
	defer c.bridge.Close()
	defer c.ws.Close()

	readDone := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(readDone)
		return c.readPump()
	})
	g.Go(func() error {
		return c.writePump(ctx, readDone)
	})
	return g.Wait()
}

func (c *Conn) readPump() error {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, message, err := c.ws.ReadMessage()
		if err != nil {
			if c.closing.Load() ||
				websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("connection closed")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if mt != websocket.TextMessage {
			c.log.WithField("type", mt).Warn("ignoring non-text frame")
			continue
		}
		m := protocol.Decode(message)
		c.log.WithFields(logrus.Fields{
			"cmd":  string(m.Cmd),
			"size": len(message),
		}).Debug("message received")
		c.bridge.Publish(m)
	}
}

func (c *Conn) writePump(ctx context.Context, readDone <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			return nil
		case <-ctx.Done():
			c.shutdown("client shutting down")
			return nil
		case <-c.bridge.Done():
			c.shutdown("session closed")
			return nil
		case line := <-c.bridge.Outbox():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				c.shutdown("write failed")
				return fmt.Errorf("write: %w", err)
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown("ping failed")
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

// shutdown sends a close frame and closes the socket, which unblocks the
// read loop.
func (c *Conn) shutdown(reason string) {
	if !c.closing.CompareAndSwap(false, true) {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.log.WithError(err).Debug("close frame not sent")
	}
	c.ws.Close()
}
