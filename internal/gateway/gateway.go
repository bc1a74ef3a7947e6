// Package gateway is the websocket transport: it upgrades client
// connections, routes their commands into the room layer, and delivers the
// rooms' outbound events back over the sockets. It is the only
// implementation of the room.EventSink boundary.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oxquiz/oxquiz/internal/game/room"
)

// Client command types.
const (
	cmdCreateRoom = "create_room"
	cmdJoinRoom   = "join_room"
	cmdListRooms  = "list_rooms"
	cmdStartGame  = "start_game"
	cmdMove       = "move"
	cmdChat       = "chat"
)

// Server-only event names (room events come from the room package).
const (
	eventRoomList = "room_list"
	eventError    = "error"
)

// commandTimeout bounds provider-touching commands.
const commandTimeout = 5 * time.Second

// clientMessage is the inbound command envelope.
type clientMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId,omitempty"`
	RoomName  string `json:"roomName,omitempty"`
	Direction string `json:"direction,omitempty"`
	Message   string `json:"message,omitempty"`
}

// serverEnvelope is the outbound event envelope.
type serverEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Gateway owns the client registry and implements room.EventSink.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*client            // userID → client
	rooms   map[string]map[string]*client // roomID → userID → client

	coordinator *room.Manager
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// New creates a Gateway. Bind the room manager with SetCoordinator before
// serving connections; the manager needs the gateway as its sink, so the two
// are wired in that order.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Gateway {
	return &Gateway{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to the fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// SetCoordinator binds the room manager the gateway dispatches commands to.
//
// Precondition: must be called exactly once, before ServeWS.
func (g *Gateway) SetCoordinator(m *room.Manager) {
	g.coordinator = m
}

// ServeWS upgrades the request and runs the connection's read loop until the
// client disconnects. Each connection gets a fresh user ID.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID := uuid.NewString()
	c := newClient(userID, conn)

	g.mu.Lock()
	g.clients[userID] = c
	g.mu.Unlock()

	go c.writePump()
	g.logger.Info("client connected", zap.String("user_id", userID))

	g.readLoop(c)
}

func (g *Gateway) readLoop(c *client) {
	defer g.disconnect(c)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			g.logger.Debug("discarding malformed message",
				zap.String("user_id", c.userID),
				zap.Error(err),
			)
			continue
		}
		g.dispatch(c, msg)
	}
}

func (g *Gateway) dispatch(c *client, msg clientMessage) {
	// Commands that hit the providers (join's lazy pool refill, the first
	// round's quiz fetch) get a bounded context.
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case cmdCreateRoom:
		if _, ok := g.coordinator.RoomFor(c.userID); ok {
			g.Send(c.userID, eventError, map[string]string{"message": "already in a room"})
			return
		}
		r := g.coordinator.CreateRoom(msg.RoomName)
		// Membership is registered before Join so every room broadcast from
		// here on reaches the client; a failed Join rolls both back.
		g.setRoom(c, r.ID())
		if err := g.coordinator.Join(ctx, r.ID(), c.userID); err != nil {
			g.clearRoom(c)
			g.coordinator.Destroy(r.ID())
			g.Send(c.userID, eventError, map[string]string{"message": err.Error()})
			return
		}

	case cmdJoinRoom:
		g.setRoom(c, msg.RoomID)
		if err := g.coordinator.Join(ctx, msg.RoomID, c.userID); err != nil {
			g.clearRoom(c)
			g.Send(c.userID, eventError, map[string]string{"message": err.Error()})
			return
		}

	case cmdListRooms:
		g.Send(c.userID, eventRoomList, g.coordinator.List())

	case cmdStartGame:
		r, ok := g.coordinator.RoomFor(c.userID)
		if !ok {
			return
		}
		if err := r.StartGame(ctx, c.userID); err != nil {
			g.Send(c.userID, eventError, map[string]string{"message": err.Error()})
		}

	case cmdMove:
		r, ok := g.coordinator.RoomFor(c.userID)
		if !ok {
			return
		}
		r.Move(c.userID, room.Direction(msg.Direction))

	case cmdChat:
		r, ok := g.coordinator.RoomFor(c.userID)
		if !ok {
			return
		}
		r.Chat(c.userID, msg.Message)

	default:
		g.logger.Debug("unknown command",
			zap.String("user_id", c.userID),
			zap.String("type", msg.Type),
		)
	}
}

func (g *Gateway) disconnect(c *client) {
	g.coordinator.Leave(c.userID)

	g.mu.Lock()
	if c.roomID != "" {
		if members, ok := g.rooms[c.roomID]; ok {
			delete(members, c.userID)
			if len(members) == 0 {
				delete(g.rooms, c.roomID)
			}
		}
	}
	delete(g.clients, c.userID)
	g.mu.Unlock()

	c.close()
	g.logger.Info("client disconnected", zap.String("user_id", c.userID))
}

func (g *Gateway) setRoom(c *client, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.roomID = roomID
	if g.rooms[roomID] == nil {
		g.rooms[roomID] = make(map[string]*client)
	}
	g.rooms[roomID][c.userID] = c
}

// clearRoom undoes setRoom after a failed join.
func (g *Gateway) clearRoom(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if members, ok := g.rooms[c.roomID]; ok {
		delete(members, c.userID)
		if len(members) == 0 {
			delete(g.rooms, c.roomID)
		}
	}
	c.roomID = ""
}

// Send delivers an event to a single connected user. Unknown users and full
// buffers drop the event.
func (g *Gateway) Send(userID, event string, payload any) {
	g.mu.RLock()
	c, ok := g.clients[userID]
	g.mu.RUnlock()
	if !ok {
		return
	}
	g.deliver(c, event, payload)
}

// Broadcast delivers an event to every member of a room, optionally
// excluding one user.
func (g *Gateway) Broadcast(roomID, event string, payload any, excludeUserID string) {
	g.mu.RLock()
	members := make([]*client, 0, len(g.rooms[roomID]))
	for id, c := range g.rooms[roomID] {
		if id == excludeUserID {
			continue
		}
		members = append(members, c)
	}
	g.mu.RUnlock()

	for _, c := range members {
		g.deliver(c, event, payload)
	}
}

func (g *Gateway) deliver(c *client, event string, payload any) {
	data, err := json.Marshal(serverEnvelope{Event: event, Payload: payload})
	if err != nil {
		g.logger.Error("marshalling event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}
	if !c.enqueue(data) {
		g.logger.Warn("dropping event for slow client",
			zap.String("user_id", c.userID),
			zap.String("event", event),
		)
	}
}
