package ws

import (
	"log"
)

// OnlineUsersPayload carries the full online-set. Clients replace their view
// wholesale, which makes repeated broadcasts harmless.
type OnlineUsersPayload struct {
	Users []uint `json:"users"`
}

// AnnouncePresence broadcasts the current online-set to every connection.
// The broadcast is global: the connection layer does not know chat
// membership, downstream UI filters by relevance.
func (h *Hub) AnnouncePresence() {
	frame, err := envelope(EventTypeOnlineUsers, OnlineUsersPayload{Users: h.OnlineUsers()})
	if err != nil {
		log.Printf("Error marshaling presence broadcast: %v", err)
		return
	}
	h.Broadcast(frame)
}

// RegisterAnnounced registers the client and broadcasts the refreshed
// online-set only when the user actually came online. A second device of an
// already-online user changes nothing the peers can see, so nothing is sent.
func (h *Hub) RegisterAnnounced(c *Client) bool {
	if !h.Register(c) {
		return false
	}
	h.AnnouncePresence()
	return true
}

// UnregisterAnnounced removes the client and broadcasts only when this was
// the user's last connection.
func (h *Hub) UnregisterAnnounced(c *Client) bool {
	if !h.Unregister(c) {
		return false
	}
	h.AnnouncePresence()
	return true
}
