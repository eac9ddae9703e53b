package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one authenticated connection session. A user may hold
// several at once (two browser tabs), each with its own current room.
// UserID is set at registration and never reassigned.

type Client struct {
	ConnID string          // unique within this gateway
	UserID string          // fixed after the handshake verification
	WS     *websocket.Conn // nil in tests; only the write pump touches it
	Send   chan []byte     // outbound queue, consumed by a single writer goroutine

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(connID, userID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Close signals teardown to the write pump. Send is never closed:
// pipeline and fanout workers may still hold the client, and a send
// racing a channel close panics. Producers check done instead, so a
// late enqueue is dropped rather than crashing a worker.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
