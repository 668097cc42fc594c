package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/Ss2809/Chat/internal/cache"
	"github.com/Ss2809/Chat/internal/handlers/ws"
	"github.com/Ss2809/Chat/internal/service"
	"github.com/gofiber/websocket/v2"
)

const (
	maxFrameSize = 64 * 1024
	pongTimeout  = 90 * time.Second
)

type WebSocketHandler struct {
	messageService *service.MessageService
	userService    *service.UserService
	hub            *ws.Hub
	rooms          *ws.Rooms
	userCache      *cache.UserCache
	messageCache   *cache.MessageCache
}

func NewWebSocketHandler(messageService *service.MessageService, userService *service.UserService, userCache *cache.UserCache, messageCache *cache.MessageCache) *WebSocketHandler {
	return &WebSocketHandler{
		messageService: messageService,
		userService:    userService,
		hub:            ws.NewHub(),
		rooms:          ws.NewRooms(),
		userCache:      userCache,
		messageCache:   messageCache,
	}
}

// GetHub returns the hub instance (useful for sending notifications from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// GetRooms returns the fan-out group table
func (h *WebSocketHandler) GetRooms() *ws.Rooms {
	return h.rooms
}

// HandleWebSocket runs one connection's event loop. The identity was
// established by the auth middleware before the upgrade; a connection that
// reaches this point is already verified.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		c.Close()
		return
	}
	username, _ := c.Locals("username").(string)

	client := ws.NewClient(h.hub, c, userID, username)

	c.SetReadLimit(maxFrameSize)
	c.SetReadDeadline(time.Now().Add(pongTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	// Presence (broadcast and Redis mirror) moves only when the online-set
	// actually changes; a second device of an online user is invisible
	if h.hub.RegisterAnnounced(client) {
		go func() {
			if err := h.userCache.SetUserOnline(userID); err != nil {
				log.Printf("Failed to set user %d online in cache: %v", userID, err)
			}
		}()
	}
	go client.WritePump()

	defer func() {
		h.rooms.LeaveAll(client)
		if h.hub.UnregisterAnnounced(client) {
			go func() {
				if err := h.userCache.SetUserOffline(userID); err != nil {
					log.Printf("Failed to set user %d offline in cache: %v", userID, err)
				}
			}()
		}
		log.Printf("User %d disconnected from WebSocket", userID)
	}()

	log.Printf("User %d connected via WebSocket (connections: %d)", userID, h.hub.Count())

	ctx := &ws.EventContext{
		UserID:   userID,
		Username: username,
		Client:   client,
		Hub:      h.hub,
		Rooms:    h.rooms,
		Messages: h.messageService,
		Users:    h.userService,
		Cache:    h.messageCache,
	}

	// Events from one connection are processed in arrival order; ordering
	// across connections is the store's conditional updates' problem.
	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading from user %d: %v", userID, err)
			break
		}

		evt, err := ws.Deserialize(frame)
		if err != nil {
			log.Printf("Error deserializing event from user %d: %v", userID, err)
			ws.SendError(client, "invalid_event", "Invalid event format", err.Error())
			continue
		}

		if err := evt.Process(ctx); err != nil {
			log.Printf("Error processing %s from user %d: %v", evt.GetType(), userID, err)
			code := "processing_failed"
			if errors.Is(err, ws.ErrInvalidPayload) {
				code = "invalid_payload"
			}
			ws.SendError(client, code, "Failed to process event", err.Error())
		}
	}
}
