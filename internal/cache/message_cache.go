package cache

import (
	"fmt"
	"time"

	"github.com/Ss2809/Chat/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	ChatHistoryTTL = 5 * time.Minute
)

// MessageCache caches full chat histories for the fetch endpoint. Any write
// that touches a chat (send, delivered, read, clear) invalidates its entry.
type MessageCache struct {
	redis *RedisCache
}

// NewMessageCache creates a new message cache
func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func chatKey(chatID uint) string {
	return fmt.Sprintf("chat:%d:messages", chatID)
}

// GetChat retrieves cached chat messages
func (mc *MessageCache) GetChat(chatID uint) ([]models.Message, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(chatKey(chatID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}

	return messages, true
}

// SetChat caches a chat's messages
func (mc *MessageCache) SetChat(chatID uint, messages []models.Message) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return mc.redis.Set(chatKey(chatID), data, ChatHistoryTTL)
}

// InvalidateChat drops the cached history after any status or content change
func (mc *MessageCache) InvalidateChat(chatID uint) {
	if mc == nil || mc.redis == nil {
		return
	}
	_ = mc.redis.Delete(chatKey(chatID))
}
