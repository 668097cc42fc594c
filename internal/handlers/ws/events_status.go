package ws

import (
	"log"
	"time"

	"github.com/Ss2809/Chat/internal/models"
)

// StatusUpdatePayload notifies a message's sender of a status transition
type StatusUpdatePayload struct {
	MessageID   uint                 `json:"message_id"`
	Status      models.MessageStatus `json:"status"`
	DeliveredAt *time.Time           `json:"delivered_at,omitempty"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
}

// ReadUpdatePayload tells a chat's participants that a peer read the chat
// without enumerating message ids.
type ReadUpdatePayload struct {
	ChatID uint      `json:"chat_id"`
	ReadBy uint      `json:"read_by"`
	ReadAt time.Time `json:"read_at"`
}

// EventMessageDelivered is a recipient's bulk delivery ack. Only messages
// still at sent and not authored by the caller transition; everything else
// is a no-op, which makes redelivered acks harmless.
type EventMessageDelivered struct {
	ChatID     uint   `json:"chat_id"`
	MessageIDs []uint `json:"message_ids"`
}

func (e *EventMessageDelivered) GetType() string {
	return "messageDelivered"
}

func (e *EventMessageDelivered) Process(ctx *EventContext) error {
	if e.ChatID == 0 || len(e.MessageIDs) == 0 {
		return ErrInvalidPayload
	}

	updated, at, err := ctx.Messages.MarkDelivered(ctx.UserID, e.ChatID, e.MessageIDs)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return nil
	}

	ctx.Cache.InvalidateChat(e.ChatID)
	NotifyStatusUpdates(ctx.Hub, updated, models.StatusDelivered, at)
	return nil
}

// EventMessagesRead marks every unread message in the chat (not authored by
// the reader) as read, notifies each sender, and tells the rest of the room
// with a single read receipt.
type EventMessagesRead struct {
	ChatID uint `json:"chat_id"`
}

func (e *EventMessagesRead) GetType() string {
	return "messagesRead"
}

func (e *EventMessagesRead) Process(ctx *EventContext) error {
	if e.ChatID == 0 {
		return ErrInvalidPayload
	}

	updated, at, err := ctx.Messages.MarkChatRead(ctx.UserID, e.ChatID)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		// Nothing unread: no notifications at all
		return nil
	}

	ctx.Cache.InvalidateChat(e.ChatID)
	NotifyStatusUpdates(ctx.Hub, updated, models.StatusRead, at)
	NotifyReadUpdate(ctx.Rooms, e.ChatID, ctx.UserID, at, ctx.Client)
	return nil
}

// NotifyStatusUpdates pushes one status-update frame per transitioned message
// to that message's sender. Offline senders are skipped silently; the store
// already holds the authoritative status.
func NotifyStatusUpdates(hub *Hub, updated []models.Message, status models.MessageStatus, at time.Time) {
	for _, m := range updated {
		payload := StatusUpdatePayload{MessageID: m.ID, Status: status}
		switch status {
		case models.StatusDelivered:
			payload.DeliveredAt = &at
		case models.StatusRead:
			payload.ReadAt = &at
		}

		frame, err := envelope(EventTypeMessageStatus, payload)
		if err != nil {
			log.Printf("Error marshaling status update for message %d: %v", m.ID, err)
			continue
		}
		hub.SendToUser(m.SenderID, frame)
	}
}

// NotifyReadUpdate broadcasts a single read receipt to the chat's fan-out
// group. except skips the reader's own connection when the ack came in over
// the socket; REST callers pass nil.
func NotifyReadUpdate(rooms *Rooms, chatID uint, readerID uint, at time.Time, except *Client) {
	frame, err := envelope(EventTypeMessagesReadUpdate, ReadUpdatePayload{
		ChatID: chatID,
		ReadBy: readerID,
		ReadAt: at,
	})
	if err != nil {
		log.Printf("Error marshaling read update for chat %d: %v", chatID, err)
		return
	}
	rooms.BroadcastToChat(chatID, frame, except)
}
