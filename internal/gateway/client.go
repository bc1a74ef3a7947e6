package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// outBufferSize is the per-client outbound queue depth. A client that
	// falls this far behind starts losing events instead of stalling rooms.
	outBufferSize = 64

	writeWait = 10 * time.Second
)

// client is one connected user: a websocket connection plus a buffered
// outbound queue drained by a dedicated write pump.
type client struct {
	userID string
	conn   *websocket.Conn

	mu     sync.Mutex
	out    chan []byte
	closed bool

	// roomID is the room this client currently occupies, or "".
	// Guarded by the gateway's registry lock, not the client's.
	roomID string
}

func newClient(userID string, conn *websocket.Conn) *client {
	return &client{
		userID: userID,
		conn:   conn,
		out:    make(chan []byte, outBufferSize),
	}
}

// enqueue queues data for delivery. Returns false when the client is closed
// or its buffer is full; the event is dropped in both cases.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

// close marks the client closed and closes the outbound queue so the write
// pump drains and exits. Safe to call multiple times.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

// writePump sends queued events until the queue closes or a write fails.
// Runs in its own goroutine.
func (c *client) writePump() {
	for data := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}
