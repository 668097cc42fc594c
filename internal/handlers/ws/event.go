package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/Ss2809/Chat/internal/cache"
	"github.com/Ss2809/Chat/internal/models"
)

// ErrInvalidPayload rejects a structurally valid frame whose payload fails
// validation (missing chat id, empty id list, ...).
var ErrInvalidPayload = errors.New("invalid event payload")

// MessageStore is the slice of the message service the event handlers need.
// Defined here so tests can substitute an in-memory double.
type MessageStore interface {
	Send(senderID uint, chatID uint, clientID string, content string) (*models.Message, error)
	MarkDelivered(callerID uint, chatID uint, messageIDs []uint) ([]models.Message, time.Time, error)
	MarkChatRead(callerID uint, chatID uint) ([]models.Message, time.Time, error)
}

// UserDirectory resolves display fields for outgoing payloads
type UserDirectory interface {
	DisplayFields(userID uint) (models.UserResponse, error)
}

// EventContext provides all dependencies needed for event processing
type EventContext struct {
	UserID   uint
	Username string
	Client   *Client
	Hub      *Hub
	Rooms    *Rooms
	Messages MessageStore
	Users    UserDirectory
	Cache    *cache.MessageCache
}

// Event is one client-originated frame. Each type carries a fixed payload
// shape; malformed payloads are rejected at the boundary.
type Event interface {
	GetType() string
	Process(ctx *EventContext) error
}

// SerializedEvent is the wire format wrapper
type SerializedEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when event processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func CreateEvent(eventType string, registry map[string]reflect.Type) (Event, error) {
	typ, ok := registry[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	instance := reflect.New(typ).Interface()
	return instance.(Event), nil
}

// SendError queues an error frame on the client's connection
func SendError(c *Client, code, message, details string) {
	frame, err := json.Marshal(ErrorResponse{
		Type:    EventTypeError,
		Error:   message,
		Code:    code,
		Details: details,
	})
	if err != nil {
		return
	}
	c.Enqueue(frame)
}
