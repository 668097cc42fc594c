package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/Ss2809/Chat/internal/cache"
	"github.com/Ss2809/Chat/internal/handlers/ws"
	"github.com/Ss2809/Chat/internal/httpx"
	"github.com/Ss2809/Chat/internal/models"
	"github.com/Ss2809/Chat/internal/service"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler exposes the chat history and acknowledgment operations over
// HTTP. Acks taken here run through the same conditional updates and emit the
// same realtime notifications as the socket events.
type MessageHandler struct {
	messageService *service.MessageService
	chatService    *service.ChatService
	messageCache   *cache.MessageCache
	hub            *ws.Hub
	rooms          *ws.Rooms
}

func NewMessageHandler(messageService *service.MessageService, chatService *service.ChatService, messageCache *cache.MessageCache, hub *ws.Hub, rooms *ws.Rooms) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		chatService:    chatService,
		messageCache:   messageCache,
		hub:            hub,
		rooms:          rooms,
	}
}

func chatIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("chat_id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid chat id")
	}
	return uint(id), nil
}

// GetChatMessages returns the full chronological history of a chat
func (h *MessageHandler) GetChatMessages(c *fiber.Ctx) error {
	chatID, err := chatIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	messages, hit := h.messageCache.GetChat(chatID)
	if !hit {
		messages, err = h.messageService.GetChatMessages(chatID)
		if err != nil {
			return httpx.Internal(c, "fetch_failed")
		}
		if err := h.messageCache.SetChat(chatID, messages); err != nil {
			log.Printf("Failed to cache chat %d: %v", chatID, err)
		}
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return c.JSON(responses)
}

type markDeliveredRequest struct {
	ChatID     uint   `json:"chat_id"`
	MessageIDs []uint `json:"message_ids"`
}

// MarkDelivered is the HTTP twin of the messageDelivered socket event
func (h *MessageHandler) MarkDelivered(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	var req markDeliveredRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.ChatID == 0 || len(req.MessageIDs) == 0 {
		return httpx.BadRequest(c, "missing_fields", "chat_id and message_ids are required")
	}

	updated, at, err := h.messageService.MarkDelivered(userID, req.ChatID, req.MessageIDs)
	if err != nil {
		return httpx.Internal(c, "update_failed")
	}

	if len(updated) > 0 {
		h.messageCache.InvalidateChat(req.ChatID)
		ws.NotifyStatusUpdates(h.hub, updated, models.StatusDelivered, at)
	}

	return c.JSON(fiber.Map{
		"message":      "Messages marked as delivered",
		"updated":      len(updated),
		"delivered_at": at,
	})
}

type markReadRequest struct {
	ChatID uint `json:"chat_id"`
}

// MarkRead is the HTTP twin of the messagesRead socket event
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	if req.ChatID == 0 {
		return httpx.BadRequest(c, "missing_fields", "chat_id is required")
	}

	updated, at, err := h.messageService.MarkChatRead(userID, req.ChatID)
	if err != nil {
		return httpx.Internal(c, "update_failed")
	}

	if len(updated) > 0 {
		h.messageCache.InvalidateChat(req.ChatID)
		ws.NotifyStatusUpdates(h.hub, updated, models.StatusRead, at)
		ws.NotifyReadUpdate(h.rooms, req.ChatID, userID, at, nil)
	}

	return c.JSON(fiber.Map{
		"message": "Messages marked as read",
		"updated": len(updated),
		"read_at": at,
	})
}

// GetChatStats returns per-status message counts for a chat
func (h *MessageHandler) GetChatStats(c *fiber.Ctx) error {
	chatID, err := chatIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	counts, total, err := h.messageService.ChatStats(chatID)
	if err != nil {
		return httpx.Internal(c, "stats_failed")
	}

	return c.JSON(fiber.Map{
		"total_messages":   total,
		"status_breakdown": counts,
	})
}

// ClearChat deletes a chat's full history. Participants only.
func (h *MessageHandler) ClearChat(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	chatID, err := chatIDParam(c)
	if err != nil {
		return httpx.BadRequest(c, "invalid_chat_id", "Invalid chat id")
	}

	if err := h.chatService.RequireParticipant(chatID, userID); err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			return httpx.Forbidden(c, "not_participant", "Not a participant of this chat")
		}
		return httpx.Internal(c, "participant_check_failed")
	}

	deleted, err := h.messageService.ClearChat(chatID)
	if err != nil {
		return httpx.Internal(c, "clear_failed")
	}

	h.messageCache.InvalidateChat(chatID)

	return c.JSON(fiber.Map{
		"message": "Chat history cleared",
		"deleted": deleted,
	})
}
