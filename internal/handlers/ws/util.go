package ws

import "encoding/json"

// Server-originated event types
const (
	EventTypeReceiveMessage     = "receiveMessage"
	EventTypeMessageStatus      = "messageStatusUpdate"
	EventTypeMessagesReadUpdate = "messagesReadUpdate"
	EventTypeOnlineUsers        = "onlineUsers"
	EventTypeShowTyping         = "showTyping"
	EventTypeHideTyping         = "hideTyping"
	EventTypeError              = "error"
)

func Serialize(evt Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedEvent{
		Type:    evt.GetType(),
		Payload: payload,
	})
}

func Deserialize(jsonBytes []byte) (Event, error) {
	var wrapper SerializedEvent
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	evt, err := CreateEvent(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}

	if len(wrapper.Payload) > 0 {
		if err := json.Unmarshal(wrapper.Payload, evt); err != nil {
			return nil, err
		}
	}

	return evt, nil
}

// envelope wraps a server-originated payload in the wire format
func envelope(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedEvent{
		Type:    eventType,
		Payload: raw,
	})
}
