package ws

import (
	"sync"
)

// Rooms tracks which clients joined which chat's fan-out group. A client
// may join any number of chats over its lifetime; everything is dropped on
// disconnect via LeaveAll.
type Rooms struct {
	mu       sync.RWMutex
	byChat   map[uint]map[*Client]struct{}
	byClient map[*Client]map[uint]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		byChat:   make(map[uint]map[*Client]struct{}),
		byClient: make(map[*Client]map[uint]struct{}),
	}
}

// Join adds the client to the chat's fan-out group. Idempotent.
func (r *Rooms) Join(chatID uint, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byChat[chatID] == nil {
		r.byChat[chatID] = make(map[*Client]struct{})
	}
	r.byChat[chatID][c] = struct{}{}

	if r.byClient[c] == nil {
		r.byClient[c] = make(map[uint]struct{})
	}
	r.byClient[c][chatID] = struct{}{}
}

// LeaveAll removes the client from every chat it joined
func (r *Rooms) LeaveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for chatID := range r.byClient[c] {
		delete(r.byChat[chatID], c)
		if len(r.byChat[chatID]) == 0 {
			delete(r.byChat, chatID)
		}
	}
	delete(r.byClient, c)
}

// Members returns a snapshot of the clients joined to a chat
func (r *Rooms) Members(chatID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byChat[chatID]
	members := make([]*Client, 0, len(set))
	for c := range set {
		members = append(members, c)
	}
	return members
}

// BroadcastToChat enqueues a frame on every client joined to the chat,
// skipping except when non-nil. Returns the number of clients that accepted
// the frame.
func (r *Rooms) BroadcastToChat(chatID uint, frame []byte, except *Client) int {
	sent := 0
	for _, c := range r.Members(chatID) {
		if c == except {
			continue
		}
		if c.Enqueue(frame) {
			sent++
		}
	}
	return sent
}
