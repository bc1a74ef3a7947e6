package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/game/referee"
)

func newTestManager(t *testing.T) (*Manager, *recordSink) {
	t.Helper()
	sink := &recordSink{}
	m := NewManager(testConfig(),
		&stubQuizzes{},
		stubParts{},
		referee.NewSideReferee(16),
		sink,
		zap.NewNop(),
	)
	t.Cleanup(m.CloseAll)
	return m, sink
}

func TestManager_CreateAndList(t *testing.T) {
	m, _ := newTestManager(t)
	r := m.CreateRoom("friday quiz")

	got, ok := m.Room(r.ID())
	require.True(t, ok)
	assert.Equal(t, "friday quiz", got.Name())

	infos := m.List()
	require.Len(t, infos, 1)
	assert.Equal(t, r.ID(), infos[0].ID)
	assert.True(t, infos[0].Enterable)
}

func TestManager_JoinRoutesUser(t *testing.T) {
	m, _ := newTestManager(t)
	r := m.CreateRoom("friday quiz")

	require.NoError(t, m.Join(context.Background(), r.ID(), "userA"))
	got, ok := m.RoomFor("userA")
	require.True(t, ok)
	assert.Equal(t, r.ID(), got.ID())

	// One user, one room at a time.
	other := m.CreateRoom("other")
	assert.Error(t, m.Join(context.Background(), other.ID(), "userA"))
}

func TestManager_JoinUnknownRoom(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Error(t, m.Join(context.Background(), "no-such-room", "userA"))
	_, ok := m.RoomFor("userA")
	assert.False(t, ok)
}

func TestManager_LastLeaveDestroysRoom(t *testing.T) {
	m, _ := newTestManager(t)
	r := m.CreateRoom("friday quiz")
	require.NoError(t, m.Join(context.Background(), r.ID(), "userA"))
	require.NoError(t, m.Join(context.Background(), r.ID(), "userB"))

	m.Leave("userA")
	_, ok := m.Room(r.ID())
	assert.True(t, ok, "room with remaining members survives")

	m.Leave("userB")
	_, ok = m.Room(r.ID())
	assert.False(t, ok, "empty room is torn down")

	// Leaving twice is harmless.
	m.Leave("userB")
}
