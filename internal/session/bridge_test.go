package session

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/reversi-lobby/internal/protocol"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestBridgeRoutesByTag(t *testing.T) {
	b := NewBridge(8, testLogger())

	var lists, texts []protocol.Message
	b.Subscribe(protocol.TagList, func(m protocol.Message) { lists = append(lists, m) })
	b.Subscribe(protocol.TagText, func(m protocol.Message) { texts = append(texts, m) })

	b.Publish(protocol.Decode([]byte(`{"cmd":"list","data":[]}`)))
	b.Publish(protocol.Text(protocol.NoticeConnected))
	b.Publish(protocol.Decode([]byte(`{"cmd":"members","data":[]}`)))

	assert.Len(t, lists, 1)
	require.Len(t, texts, 1)
	assert.Equal(t, protocol.NoticeConnected, texts[0].Text)
}

func TestBridgeIndependentSubscribers(t *testing.T) {
	b := NewBridge(8, testLogger())

	var lobby, room, all int
	unsubLobby := b.Subscribe(protocol.TagJoin, func(protocol.Message) { lobby++ })
	unsubRoom := b.Subscribe(protocol.TagJoin, func(protocol.Message) { room++ })
	b.SubscribeAll(func(protocol.Message) { all++ })

	join := protocol.Decode([]byte(`{"cmd":"join","data":"room1"}`))
	b.Publish(join)
	unsubRoom()
	unsubRoom()
	b.Publish(join)
	unsubLobby()
	b.Publish(join)

	assert.Equal(t, 2, lobby)
	assert.Equal(t, 1, room)
	assert.Equal(t, 3, all)
}

func TestBridgeHandlerMayUnsubscribeDuringPublish(t *testing.T) {
	b := NewBridge(8, testLogger())

	calls := 0
	var unsub func()
	unsub = b.Subscribe(protocol.TagText, func(protocol.Message) {
		calls++
		unsub()
	})

	b.Publish(protocol.Text("a"))
	b.Publish(protocol.Text("b"))
	assert.Equal(t, 1, calls)
}

func TestBridgeHandlerMaySend(t *testing.T) {
	b := NewBridge(8, testLogger())
	b.Subscribe(protocol.TagText, func(m protocol.Message) {
		if m.IsMembershipChange() {
			assert.NoError(t, b.Send(protocol.Members()))
		}
	})

	b.Publish(protocol.Text(protocol.NoticeDisconnected))
	assert.Equal(t, "/members", <-b.Outbox())
}

func TestBridgeSendOrder(t *testing.T) {
	b := NewBridge(8, testLogger())

	require.NoError(t, b.Send(protocol.List()))
	require.NoError(t, b.Send(protocol.Room()))
	require.NoError(t, b.Send(protocol.Name("名無し")))

	assert.Equal(t, "/list", <-b.Outbox())
	assert.Equal(t, "/room", <-b.Outbox())
	assert.Equal(t, "/name 名無し", <-b.Outbox())
}

func TestBridgeSendRejectsInvalid(t *testing.T) {
	b := NewBridge(8, testLogger())
	assert.ErrorIs(t, b.Send(protocol.Regist(3)), protocol.ErrBadArgs)
	assert.ErrorIs(t, b.Send(protocol.Command{Name: "/dance"}), protocol.ErrUnknownCommand)
	assert.Empty(t, b.Outbox())
}

func TestBridgeClose(t *testing.T) {
	b := NewBridge(0, testLogger())
	assert.False(t, b.Closed())

	b.Close()
	b.Close()

	assert.True(t, b.Closed())
	assert.ErrorIs(t, b.Send(protocol.List()), ErrClosed)
}

func TestBridgeCloseUnblocksSend(t *testing.T) {
	b := NewBridge(0, testLogger())

	errs := make(chan error)
	go func() { errs <- b.Send(protocol.List()) }()
	b.Close()

	assert.ErrorIs(t, <-errs, ErrClosed)
}
