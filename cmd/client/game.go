package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/reversi-lobby/internal/board"
	"github.com/vancomm/reversi-lobby/internal/config"
	"github.com/vancomm/reversi-lobby/internal/lobby"
	"github.com/vancomm/reversi-lobby/internal/protocol"
	"github.com/vancomm/reversi-lobby/internal/session"
	"github.com/vancomm/reversi-lobby/internal/surface"
)

const (
	statusHeight = 24
	lineHeight   = 16
	margin       = 8
)

var backdrop = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}

type game struct {
	ctx    context.Context
	cfg    *config.Config
	lobby  *lobby.Lobby
	host   *surface.Host
	bridge *session.Bridge
	log    logrus.FieldLogger

	input  []rune
	notice string
}

func newGame(
	ctx context.Context,
	cfg *config.Config,
	lb *lobby.Lobby,
	host *surface.Host,
	bridge *session.Bridge,
	log logrus.FieldLogger,
) *game {
	return &game{ctx: ctx, cfg: cfg, lobby: lb, host: host, bridge: bridge, log: log}
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	case <-g.bridge.Done():
		g.log.Info("connection closed")
		return ebiten.Termination
	default:
	}

	room, inRoom := g.lobby.Room()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if inRoom {
			g.host.Click(x, y)
		} else {
			g.clickRoomList(y)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.report(g.lobby.RefreshRooms())
	case inRoom && inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.report(g.lobby.Leave())
	case inRoom && inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.report(room.RegisterPlayer(1))
	case inRoom && inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.report(room.RegisterPlayer(2))
	case inRoom && inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.report(room.StartGame())
	}

	g.input = ebiten.AppendInputChars(g.input)
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(g.input) > 0 {
		g.input = g.input[:len(g.input)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		line := strings.TrimSpace(string(g.input))
		g.input = g.input[:0]
		if line != "" {
			g.report(g.submit(line))
		}
	}
	return nil
}

// submit handles a typed line: lobby commands go through the lobby so its
// view stays current, the rest straight to the session.
func (g *game) submit(line string) error {
	cmd, err := protocol.Parse(line)
	if err != nil {
		return err
	}
	switch cmd.Name {
	case protocol.CmdName:
		return g.lobby.SetName(cmd.Args[0])
	case protocol.CmdJoin:
		return g.lobby.Join(cmd.Args[0])
	case protocol.CmdList:
		return g.lobby.RefreshRooms()
	case protocol.CmdPut:
		room, ok := g.lobby.Room()
		if !ok {
			return lobby.ErrNotInRoom
		}
		c, ok := cmd.Cell()
		if !ok {
			return fmt.Errorf("%w: %s", protocol.ErrBadArgs, line)
		}
		return room.Put(c)
	}
	return g.bridge.Send(cmd)
}

func (g *game) report(err error) {
	if err == nil {
		g.notice = ""
		return
	}
	if errors.Is(err, session.ErrClosed) {
		g.notice = "disconnected"
	} else {
		g.notice = err.Error()
	}
	g.log.WithError(err).Debug("input rejected")
}

func (g *game) clickRoomList(y int) {
	i := (y - statusHeight - lineHeight) / lineHeight
	rooms := g.lobby.View().Rooms
	if y < statusHeight+lineHeight || i >= len(rooms) {
		return
	}
	g.report(g.lobby.Join(rooms[i]))
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(backdrop)
	v := g.lobby.View()

	status := fmt.Sprintf("%s @ %s", v.Name, v.Room)
	if g.bridge.Closed() {
		status += "  [disconnected]"
	}
	ebitenutil.DebugPrintAt(screen, status, margin, 4)

	room, inRoom := g.lobby.Room()
	if inRoom {
		g.host.RunFrames(newImageSurface(screen, g.host.Bounds()))
		g.drawRoom(screen, room.View())
	} else {
		g.drawLobby(screen, v)
	}

	bottom := g.cfg.Window.Height - lineHeight - 4
	g.drawHistory(screen, v.History, inRoom, bottom-2*lineHeight)
	if msg := firstNonEmpty(g.notice, v.LastError); msg != "" {
		ebitenutil.DebugPrintAt(screen, "! "+msg, margin, bottom-lineHeight)
	}
	ebitenutil.DebugPrintAt(screen, "> "+string(g.input), margin, bottom)
}

func (g *game) drawLobby(screen *ebiten.Image, v lobby.View) {
	y := statusHeight
	ebitenutil.DebugPrintAt(screen, "Rooms (click to join, F5 to refresh):", margin, y)
	for _, r := range v.Rooms {
		y += lineHeight
		ebitenutil.DebugPrintAt(screen, "  "+r, margin, y)
	}
}

func (g *game) drawRoom(screen *ebiten.Image, v lobby.RoomView) {
	x := g.host.Bounds().Max.X + margin
	y := statusHeight

	lines := []string{
		"Room " + v.Name,
		"P1: " + orDash(v.Player1),
		"P2: " + orDash(v.Player2),
	}
	if v.Started {
		lines = append(lines, "playing")
	} else if v.StartFailure != "" {
		lines = append(lines, "start: "+v.StartFailure)
	}
	if !v.Grid.IsZero() {
		lines = append(lines, fmt.Sprintf("black %d  white %d",
			v.Grid.Count(board.Black), v.Grid.Count(board.White)))
	}
	lines = append(lines, "", "Members:")
	for _, m := range v.Members {
		lines = append(lines, "  "+m)
	}
	lines = append(lines, "", "F1/F2 seat  F3 start", "Esc leave")

	for _, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y)
		y += lineHeight
	}
}

// drawHistory prints the latest text lines upwards from y, beside the board
// while in a room.
func (g *game) drawHistory(screen *ebiten.Image, history []string, inRoom bool, y int) {
	x := margin
	if inRoom {
		x = g.host.Bounds().Max.X + margin
	}
	for i := len(history) - 1; i >= 0; i-- {
		ebitenutil.DebugPrintAt(screen, history[i], x, y)
		y -= lineHeight
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
