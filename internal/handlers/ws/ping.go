package ws

// EventPing is a keepalive ping from client
type EventPing struct {
}

func (e *EventPing) GetType() string {
	return "ping"
}

func (e *EventPing) Process(ctx *EventContext) error {
	// Respond with pong
	frame, err := envelope("pong", struct{}{})
	if err != nil {
		return err
	}
	ctx.Client.Enqueue(frame)
	return nil
}

// EventPong is a pong response (in case client wants to track latency)
type EventPong struct {
}

func (e *EventPong) GetType() string {
	return "pong"
}

func (e *EventPong) Process(ctx *EventContext) error {
	// No-op - just acknowledge
	return nil
}
