package ws

// Typing signals are ephemeral: relayed to the rest of the room, never
// persisted, never conditional. A client that vanishes mid-typing leaves a
// stale indicator until its peers hear a fresh signal; cleanup is
// client-driven.

type TypingPayload struct {
	ChatID   uint   `json:"chat_id"`
	Username string `json:"username,omitempty"`
}

type EventShowTyping struct {
	ChatID uint `json:"chat_id"`
}

func (e *EventShowTyping) GetType() string {
	return "showTyping"
}

func (e *EventShowTyping) Process(ctx *EventContext) error {
	if e.ChatID == 0 {
		return ErrInvalidPayload
	}

	// The handle comes from the authenticated identity, never from the
	// client payload, so it cannot be spoofed.
	username := ctx.Username
	if fields, err := ctx.Users.DisplayFields(ctx.UserID); err == nil {
		username = fields.Username
	}

	frame, err := envelope(EventTypeShowTyping, TypingPayload{ChatID: e.ChatID, Username: username})
	if err != nil {
		return err
	}
	ctx.Rooms.BroadcastToChat(e.ChatID, frame, ctx.Client)
	return nil
}

type EventHideTyping struct {
	ChatID uint `json:"chat_id"`
}

func (e *EventHideTyping) GetType() string {
	return "hideTyping"
}

func (e *EventHideTyping) Process(ctx *EventContext) error {
	if e.ChatID == 0 {
		return ErrInvalidPayload
	}

	frame, err := envelope(EventTypeHideTyping, TypingPayload{ChatID: e.ChatID})
	if err != nil {
		return err
	}
	ctx.Rooms.BroadcastToChat(e.ChatID, frame, ctx.Client)
	return nil
}
