package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/reversi-lobby/internal/board"
)

func TestDecodeJSON(t *testing.T) {
	m := Decode([]byte(`{"cmd":"list","data":["room1","room2"]}`))
	assert.Equal(t, TagList, m.Cmd)
	assert.False(t, m.IsText())

	rooms, err := m.DataStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"room1", "room2"}, rooms)
}

func TestDecodeRoom(t *testing.T) {
	m := Decode([]byte(`{"cmd":"join","data":"room3"}`))
	room, err := m.DataString()
	require.NoError(t, err)
	assert.Equal(t, TagJoin, m.Cmd)
	assert.Equal(t, "room3", room)
}

func TestDecodeText(t *testing.T) {
	for _, raw := range []string{
		"Someone connected",
		"alice: hi",
		"{not json",
		`{"data":"no cmd"}`,
		"",
	} {
		m := Decode([]byte(raw))
		assert.True(t, m.IsText(), raw)
		assert.Equal(t, raw, m.Text)
	}
}

func TestNotices(t *testing.T) {
	assert.True(t, Decode([]byte(NoticeConnected)).IsMembershipChange())
	assert.True(t, Decode([]byte(NoticeDisconnected)).IsMembershipChange())
	assert.False(t, Decode([]byte(NoticeJoined)).IsMembershipChange())

	m := Decode([]byte("!!! room name is required"))
	assert.True(t, m.IsError())
	assert.Equal(t, "room name is required", m.ErrorText())
	assert.False(t, Decode([]byte("hello")).IsError())
}

func TestStartReplies(t *testing.T) {
	failed := Decode([]byte(`{"cmd":"start","result":"failed","data":"not enough members"}`))
	assert.True(t, failed.Failed())
	assert.False(t, failed.IsMatrix())
	reason, err := failed.DataString()
	require.NoError(t, err)
	assert.Equal(t, "not enough members", reason)

	ok := Decode([]byte(`{"cmd":"start","reulst":"success","data":"success"}`))
	assert.False(t, ok.Failed())
	assert.False(t, ok.IsMatrix())

	broadcast := Decode([]byte(`{"cmd":"start","data":[[0,1],[2,0]]}`))
	assert.True(t, broadcast.IsMatrix())
	g, err := broadcast.Grid()
	require.NoError(t, err)
	assert.Equal(t, board.White, g.At(board.Cell{Col: 1, Row: 0}))
	assert.Equal(t, board.Black, g.At(board.Cell{Col: 0, Row: 1}))
}

func TestGridErrors(t *testing.T) {
	tests := []struct {
		data string
		err  error
	}{
		{`"success"`, board.ErrInvalidStateShape},
		{`[]`, board.ErrInvalidStateShape},
		{`null`, board.ErrInvalidStateShape},
		{`[1,2]`, board.ErrInvalidStateShape},
		{`[[0,0],[0]]`, board.ErrInvalidStateShape},
		{`[[0,"x"]]`, board.ErrInvalidCellValue},
		{`[[0,1.5]]`, board.ErrInvalidCellValue},
		{`[[0,null]]`, board.ErrInvalidCellValue},
	}
	for _, test := range tests {
		m := Message{Cmd: TagBoard, Data: []byte(test.data)}
		_, err := m.Grid()
		assert.ErrorIs(t, err, test.err, test.data)
	}
}

func TestGridKeepsUnknownIntegers(t *testing.T) {
	m := Message{Cmd: TagBoard, Data: []byte(`[[0,3],[-1,2]]`)}
	g, err := m.Grid()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Anomalies())
}

func TestGridKeepsOutOfRangeIntegers(t *testing.T) {
	m := Message{Cmd: TagBoard, Data: []byte(`[[0,300],[99999999999999999999,2]]`)}
	g, err := m.Grid()
	require.NoError(t, err)
	assert.Equal(t, 2, g.Anomalies())
	assert.Equal(t, board.CellState(300), g.At(board.Cell{Col: 1, Row: 0}))
	assert.Equal(t, board.Unknown, g.At(board.Cell{Col: 0, Row: 1}))
	assert.Equal(t, board.Black, g.At(board.Cell{Col: 1, Row: 1}))
}

func TestBoardMessageRoundTrip(t *testing.T) {
	m, err := BoardMessage(TagBoard, board.StartingGrid())
	require.NoError(t, err)
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	decoded := Decode(raw)
	assert.Equal(t, TagBoard, decoded.Cmd)
	g, err := decoded.Grid()
	require.NoError(t, err)
	assert.Equal(t, board.StartingGrid(), g)
}
