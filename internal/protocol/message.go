package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/reversi-lobby/internal/board"
)

// Tag names the kind of an inbound JSON message.
type Tag string

const (
	TagRoom              Tag = "room"
	TagJoin              Tag = "join"
	TagList              Tag = "list"
	TagMembers           Tag = "members"
	TagStart             Tag = "start"
	TagBoard             Tag = "board"
	TagRegisteredPlayer1 Tag = "registered_player1"
	TagRegisteredPlayer2 Tag = "registered_player2"

	// TagText marks plain text notices and chat lines.
	TagText Tag = ""
)

const (
	NoticeJoined       = "Someone joined"
	NoticeConnected    = "Someone connected"
	NoticeDisconnected = "Someone disconnected"

	errorPrefix = "!!! "
	resultFail  = "failed"
)

type Message struct {
	Cmd    Tag             `json:"cmd"`
	Result string          `json:"result,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Text   string          `json:"-"`
}

// Decode turns one websocket frame into a message. Anything that is not a
// JSON object with a cmd field is a text message.
func Decode(raw []byte) Message {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var m Message
		if err := json.Unmarshal(trimmed, &m); err == nil && m.Cmd != TagText {
			return m
		}
	}
	return Text(string(raw))
}

func (m Message) IsText() bool { return m.Cmd == TagText }

// Failed reports a request the server refused, such as a /start with too
// few members.
func (m Message) Failed() bool { return m.Result == resultFail }

// IsError reports a "!!! ..." text notice.
func (m Message) IsError() bool {
	return m.IsText() && strings.HasPrefix(m.Text, errorPrefix)
}

func (m Message) ErrorText() string {
	return strings.TrimPrefix(m.Text, errorPrefix)
}

// IsMembershipChange reports the notices sent when someone enters or leaves
// the current room.
func (m Message) IsMembershipChange() bool {
	return m.IsText() && (m.Text == NoticeConnected || m.Text == NoticeDisconnected)
}

func (m Message) DataString() (string, error) {
	var s string
	if err := json.Unmarshal(m.Data, &s); err != nil {
		return "", fmt.Errorf("%s: data is not a string: %w", m.Cmd, err)
	}
	return s, nil
}

func (m Message) DataStrings() ([]string, error) {
	var ss []string
	if err := json.Unmarshal(m.Data, &ss); err != nil {
		return nil, fmt.Errorf("%s: data is not a string list: %w", m.Cmd, err)
	}
	return ss, nil
}

// IsMatrix reports whether Data is a JSON array, as board snapshots are.
func (m Message) IsMatrix() bool {
	d := bytes.TrimSpace(m.Data)
	return len(d) > 0 && d[0] == '['
}

// Grid decodes Data as a row-major matrix of cell values. A payload that is
// not a list of lists is rejected with [board.ErrInvalidStateShape], a cell
// that is not an integer with [board.ErrInvalidCellValue]. Integers too large
// for an int become [board.Unknown].
func (m Message) Grid() (board.Grid, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(m.Data, &rows); err != nil {
		return board.Grid{}, fmt.Errorf("%w: %v", board.ErrInvalidStateShape, err)
	}
	matrix := make([][]int, len(rows))
	for y, rawRow := range rows {
		var row []json.RawMessage
		if err := json.Unmarshal(rawRow, &row); err != nil {
			return board.Grid{}, fmt.Errorf("%w: row %d: %v", board.ErrInvalidStateShape, y, err)
		}
		matrix[y] = make([]int, len(row))
		for x, cell := range row {
			v, err := strconv.Atoi(string(bytes.TrimSpace(cell)))
			if errors.Is(err, strconv.ErrRange) {
				v, err = int(board.Unknown), nil
			}
			if err != nil {
				return board.Grid{}, fmt.Errorf("%w: %s at (%d,%d)", board.ErrInvalidCellValue, cell, x, y)
			}
			matrix[y][x] = v
		}
	}
	return board.GridFromRows(matrix)
}

// BoardMessage builds the message a server sends for a board snapshot.
func BoardMessage(tag Tag, g board.Grid) (Message, error) {
	data, err := json.Marshal(g.Matrix())
	if err != nil {
		return Message{}, err
	}
	return Message{Cmd: tag, Data: data}, nil
}

func Text(s string) Message { return Message{Cmd: TagText, Text: s} }
