package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/game/grid"
	"github.com/oxquiz/oxquiz/internal/game/nickname"
	"github.com/oxquiz/oxquiz/internal/game/quiz"
	"github.com/oxquiz/oxquiz/internal/game/referee"
)

// Info is a lobby-listing snapshot of one room.
type Info struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
	Enterable bool   `json:"enterable"`
}

// Manager owns all live rooms: creation, lookup, user→room routing, and
// teardown of rooms whose last member left. Safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	userRooms map[string]string // userID → roomID

	cfg           Config
	quizProvider  quiz.Provider
	partsProvider nickname.PartsProvider
	referee       referee.Referee
	sink          EventSink
	logger        *zap.Logger
	randSource    func() grid.Source
}

// NewManager creates a Manager. Every room it creates gets its own grid,
// nickname pool, and quiz supply sharing the given providers.
//
// Precondition: all arguments must be non-nil; cfg must be validated.
func NewManager(cfg Config, quizProvider quiz.Provider, partsProvider nickname.PartsProvider, ref referee.Referee, sink EventSink, logger *zap.Logger) *Manager {
	return &Manager{
		rooms:         make(map[string]*Room),
		userRooms:     make(map[string]string),
		cfg:           cfg,
		quizProvider:  quizProvider,
		partsProvider: partsProvider,
		referee:       ref,
		sink:          sink,
		logger:        logger,
		randSource:    grid.NewCryptoSource,
	}
}

// CreateRoom creates and registers a new room with a fresh UUID.
func (m *Manager) CreateRoom(name string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	r := New(id, name, m.cfg,
		grid.New(m.cfg.Columns, m.cfg.Rows, m.randSource()),
		nickname.NewPool(m.partsProvider),
		quiz.NewSupply(m.quizProvider),
		m.referee,
		m.sink,
		m.logger,
	)
	m.rooms[id] = r

	m.logger.Info("room created",
		zap.String("room_id", id),
		zap.String("room_name", name),
	)
	return r
}

// Room returns the room with the given ID.
func (m *Manager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomFor returns the room the given user currently occupies.
func (m *Manager) RoomFor(userID string) (*Room, bool) {
	m.mu.RLock()
	roomID, ok := m.userRooms[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.Room(roomID)
}

// List returns lobby snapshots of every live room.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.rooms))
	for _, r := range m.rooms {
		infos = append(infos, Info{
			ID:        r.ID(),
			Name:      r.Name(),
			UserCount: r.UserCount(),
			Enterable: r.CanEnter(),
		})
	}
	return infos
}

// Join routes a user into a room.
//
// Postcondition: On success the user is a member and the join notifications
// have been emitted; on error nothing changed.
func (m *Manager) Join(ctx context.Context, roomID, userID string) error {
	m.mu.Lock()
	if existing, ok := m.userRooms[userID]; ok {
		m.mu.Unlock()
		return fmt.Errorf("user %q is already in room %q", userID, existing)
	}
	r, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("room %q not found", roomID)
	}
	m.userRooms[userID] = roomID
	m.mu.Unlock()

	if err := r.Join(ctx, userID); err != nil {
		m.mu.Lock()
		delete(m.userRooms, userID)
		m.mu.Unlock()
		return err
	}
	return nil
}

// Destroy tears down a room that never got (or no longer has) any members,
// such as one whose creator failed to join it. Rooms with members are left
// alone; their teardown belongs to Leave.
func (m *Manager) Destroy(roomID string) {
	m.mu.Lock()
	r, ok := m.rooms[roomID]
	m.mu.Unlock()
	if !ok || !r.Empty() {
		return
	}

	r.Close()
	m.mu.Lock()
	delete(m.rooms, roomID)
	m.mu.Unlock()
	m.logger.Info("room destroyed", zap.String("room_id", roomID))
}

// Leave removes the user from their room, tearing the room down if they
// were its last member. Unknown users are ignored.
func (m *Manager) Leave(userID string) {
	m.mu.Lock()
	roomID, ok := m.userRooms[userID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.userRooms, userID)
	r := m.rooms[roomID]
	m.mu.Unlock()

	if r == nil {
		return
	}
	r.Leave(userID)

	if r.Empty() {
		r.Close()
		m.mu.Lock()
		delete(m.rooms, roomID)
		m.mu.Unlock()
		m.logger.Info("room destroyed", zap.String("room_id", roomID))
	}
}

// CloseAll stops every room's countdown. Used at server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.Close()
	}
}
