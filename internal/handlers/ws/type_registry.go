package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	// Register all client-originated event types
	RegisterType(&EventJoinChat{})
	RegisterType(&EventSendMessage{})
	RegisterType(&EventMessageDelivered{})
	RegisterType(&EventMessagesRead{})
	RegisterType(&EventShowTyping{})
	RegisterType(&EventHideTyping{})
	RegisterType(&EventPing{})
	RegisterType(&EventPong{})
}

func RegisterType(evt Event) {
	typeRegistry[evt.GetType()] = reflect.TypeOf(evt).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}
