package ws

import (
	"log"
)

// EventJoinChat subscribes the connection to a chat's fan-out group.
// Membership validation is the chat service's concern; here the chat id is
// an opaque routing key.
type EventJoinChat struct {
	ChatID uint `json:"chat_id"`
}

func (e *EventJoinChat) GetType() string {
	return "joinChat"
}

func (e *EventJoinChat) Process(ctx *EventContext) error {
	if e.ChatID == 0 {
		return ErrInvalidPayload
	}
	ctx.Rooms.Join(e.ChatID, ctx.Client)
	log.Printf("User %d joined chat %d", ctx.UserID, e.ChatID)
	return nil
}

// EventSendMessage persists a new message and fans it out to everyone joined
// to the chat, the sender's own connections included.
type EventSendMessage struct {
	ChatID   uint   `json:"chat_id"`
	ClientID string `json:"client_id"`
	Text     string `json:"text"`
}

func (e *EventSendMessage) GetType() string {
	return "sendMessage"
}

func (e *EventSendMessage) Process(ctx *EventContext) error {
	if e.ChatID == 0 {
		return ErrInvalidPayload
	}

	// Persist first; a store failure means no fan-out at all
	msg, err := ctx.Messages.Send(ctx.UserID, e.ChatID, e.ClientID, e.Text)
	if err != nil {
		return err
	}

	ctx.Cache.InvalidateChat(e.ChatID)

	frame, err := envelope(EventTypeReceiveMessage, msg.ToResponse())
	if err != nil {
		return err
	}
	ctx.Rooms.BroadcastToChat(e.ChatID, frame, nil)
	return nil
}
