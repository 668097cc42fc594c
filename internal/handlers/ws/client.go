package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// sendQueueSize bounds the per-connection outbound queue. A slow consumer
	// drops frames instead of growing memory; persisted state is authoritative
	// and the client re-syncs by refetching the chat.
	sendQueueSize = 256

	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	pongTimeout  = 90 * time.Second
)

// Client is one live connection for one authenticated user. A user may hold
// several clients at once (multiple devices or tabs); the Hub tracks the set.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	UserID   uint
	Username string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint, username string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		UserID:   userID,
		Username: username,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
}

// Enqueue hands a frame to the writer goroutine without ever blocking the
// caller. Overflow policy is drop-new: when the queue is full the frame is
// discarded and logged.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		log.Printf("Dropping frame for user %d: outbound queue full", c.UserID)
		return false
	}
}

// WritePump is the single writer for the connection. It drains the outbound
// queue and keeps the connection alive with protocol pings. Run it in its own
// goroutine; it exits when the client closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("Error writing to user %d: %v", c.UserID, err)
				c.hub.Unregister(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				log.Printf("Ping failed for user %d: %v", c.UserID, err)
				c.hub.Unregister(c)
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
