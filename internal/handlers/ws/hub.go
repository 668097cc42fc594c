package ws

import (
	"sync"
)

// Hub is the connection registry: it maps each user to the set of live
// clients they currently own. All state is in-memory and rebuilt from zero
// on restart; clients are expected to reconnect.
//
// Registration of a client and its attribution to the user happen under a
// single lock acquisition, so readers never observe a half-registered client.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Register adds a client under its user. Registering the same client twice is
// a no-op. Returns true when the user just came online (first connection).
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	if _, dup := set[c]; dup {
		return false
	}
	set[c] = struct{}{}
	return len(set) == 1
}

// Unregister removes a client and shuts its writer down. Returns true when
// this was the user's last connection, i.e. the user went offline.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	wentOffline := false
	if set, ok := h.clients[c.UserID]; ok {
		if _, exists := set[c]; exists {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.UserID)
				wentOffline = true
			}
		}
	}
	h.mu.Unlock()

	c.close()
	return wentOffline
}

// ConnectionsFor returns a snapshot of the user's live clients. Empty slice
// means offline.
func (h *Hub) ConnectionsFor(userID uint) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[userID]
	conns := make([]*Client, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// IsOnline checks if a user has at least one live connection
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUsers returns the ids of all users with a live connection
func (h *Hub) OnlineUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// Count returns the number of live connections across all users
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// SendToUser enqueues a frame on every connection the user owns and reports
// how many accepted it. Zero means the user is offline or every queue was
// full; the notification is simply dropped in that case.
func (h *Hub) SendToUser(userID uint, frame []byte) int {
	sent := 0
	for _, c := range h.ConnectionsFor(userID) {
		if c.Enqueue(frame) {
			sent++
		}
	}
	return sent
}

// Broadcast enqueues a frame on every live connection
func (h *Hub) Broadcast(frame []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, set := range h.clients {
		for c := range set {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Enqueue(frame)
	}
}
