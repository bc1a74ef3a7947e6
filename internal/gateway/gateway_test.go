package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/game/nickname"
	"github.com/oxquiz/oxquiz/internal/game/quiz"
	"github.com/oxquiz/oxquiz/internal/game/referee"
	"github.com/oxquiz/oxquiz/internal/game/room"
)

type stubQuizzes struct{}

func (stubQuizzes) FetchQuizBatch(_ context.Context) ([]quiz.Quiz, error) {
	return []quiz.Quiz{{ID: 1, Question: "is water wet", Answer: quiz.AnswerO}}, nil
}

type stubParts struct{}

func (stubParts) FetchAdjectives(_ context.Context) ([]string, error) {
	return []string{"brave", "sleepy"}, nil
}

func (stubParts) FetchNouns(_ context.Context) ([]string, error) {
	return []string{"otter", "badger"}, nil
}

type failingParts struct{}

func (failingParts) FetchAdjectives(_ context.Context) ([]string, error) {
	return nil, assert.AnError
}

func (failingParts) FetchNouns(_ context.Context) ([]string, error) {
	return nil, assert.AnError
}

func newTestGateway(t *testing.T) *Gateway {
	return newTestGatewayWith(t, stubParts{})
}

func newTestGatewayWith(t *testing.T, parts nickname.PartsProvider) *Gateway {
	t.Helper()
	g := New(zap.NewNop())
	cfg := room.Config{
		Columns:      16,
		Rows:         8,
		TimeLimit:    10,
		TickInterval: time.Hour,
		MaxUsers:     8,
	}
	m := room.NewManager(cfg, stubQuizzes{}, parts, referee.NewSideReferee(16), g, zap.NewNop())
	g.SetCoordinator(m)
	t.Cleanup(m.CloseAll)
	return g
}

// register adds a connection-less client directly to the registry; events
// are read from its outbound queue.
func register(g *Gateway, userID string) *client {
	c := newClient(userID, nil)
	g.mu.Lock()
	g.clients[userID] = c
	g.mu.Unlock()
	return c
}

func drain(t *testing.T, c *client) []serverEnvelope {
	t.Helper()
	var out []serverEnvelope
	for {
		select {
		case data := <-c.out:
			var env serverEnvelope
			require.NoError(t, json.Unmarshal(data, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestSend_UnknownUserIgnored(t *testing.T) {
	g := newTestGateway(t)
	g.Send("nobody", "enter_room", map[string]string{}) // must not panic
}

func TestBroadcast_ExcludesAndRoutesByRoom(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")
	b := register(g, "userB")
	outsider := register(g, "userC")

	g.setRoom(a, "room-1")
	g.setRoom(b, "room-1")
	g.setRoom(outsider, "room-2")

	g.Broadcast("room-1", "chat_message", map[string]string{"message": "hi"}, "userA")

	assert.Empty(t, drain(t, a), "excluded user must not receive the event")
	got := drain(t, b)
	require.Len(t, got, 1)
	assert.Equal(t, "chat_message", got[0].Event)
	assert.Empty(t, drain(t, outsider), "other rooms must not receive the event")
}

func TestDispatch_CreateRoomJoinsCreator(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")

	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "friday quiz"})

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, room.EventEnterRoom, events[0].Event)

	r, ok := g.coordinator.RoomFor("userA")
	require.True(t, ok)
	assert.Equal(t, "friday quiz", r.Name())
	assert.Equal(t, r.ID(), a.roomID)

	// The broadcast registry must already carry the creator, so room events
	// fired right after the join reach them.
	g.mu.RLock()
	_, member := g.rooms[r.ID()]["userA"]
	g.mu.RUnlock()
	assert.True(t, member)
}

func TestDispatch_CreateRoomWhileInRoomRejected(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")
	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "first"})
	drain(t, a)
	firstRoom := a.roomID

	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "second"})

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, eventError, events[0].Event)
	assert.Equal(t, firstRoom, a.roomID)
	assert.Len(t, g.coordinator.List(), 1, "rejected create must not leave a room behind")
}

func TestDispatch_CreateRoomJoinFailureDestroysRoom(t *testing.T) {
	g := newTestGatewayWith(t, failingParts{})
	a := register(g, "userA")

	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "doomed"})

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, eventError, events[0].Event)
	assert.Empty(t, a.roomID)
	assert.Empty(t, g.coordinator.List(), "room whose creator cannot join must be torn down")
	g.mu.RLock()
	assert.Empty(t, g.rooms)
	g.mu.RUnlock()
}

func TestDispatch_JoinStartMoveChat(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")
	b := register(g, "userB")

	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "friday quiz"})
	g.dispatch(b, clientMessage{Type: cmdJoinRoom, RoomID: a.roomID})
	drain(t, a)
	drain(t, b)

	g.dispatch(b, clientMessage{Type: cmdChat, Message: "hello"})
	for _, c := range []*client{a, b} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, room.EventChatMessage, events[0].Event)
	}

	// Only the owner can start; the non-owner command does nothing.
	g.dispatch(b, clientMessage{Type: cmdStartGame})
	assert.Empty(t, drain(t, a))
	assert.Empty(t, drain(t, b))

	g.dispatch(a, clientMessage{Type: cmdStartGame})
	for _, c := range []*client{a, b} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, room.EventStartRound, events[0].Event)
	}
}

func TestDispatch_JoinUnknownRoomSendsError(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")

	g.dispatch(a, clientMessage{Type: cmdJoinRoom, RoomID: "no-such-room"})

	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, eventError, events[0].Event)
	assert.Empty(t, a.roomID)
	g.mu.RLock()
	assert.Empty(t, g.rooms, "failed join must not linger in the broadcast registry")
	g.mu.RUnlock()
}

func TestDispatch_ListRooms(t *testing.T) {
	g := newTestGateway(t)
	a := register(g, "userA")
	g.dispatch(a, clientMessage{Type: cmdCreateRoom, RoomName: "friday quiz"})
	drain(t, a)

	g.dispatch(a, clientMessage{Type: cmdListRooms})
	events := drain(t, a)
	require.Len(t, events, 1)
	assert.Equal(t, eventRoomList, events[0].Event)
}

func TestClient_EnqueueDropsWhenFull(t *testing.T) {
	c := newClient("userA", nil)
	for i := 0; i < outBufferSize; i++ {
		require.True(t, c.enqueue([]byte("x")))
	}
	assert.False(t, c.enqueue([]byte("overflow")))
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	c := newClient("userA", nil)
	c.close()
	c.close() // idempotent
	assert.False(t, c.enqueue([]byte("x")))
}
