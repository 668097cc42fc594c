package service

import (
	"errors"
	"time"

	"github.com/Ss2809/Chat/internal/models"
	"github.com/Ss2809/Chat/internal/repository"
	"github.com/Ss2809/Chat/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrMissingChat  = errors.New("chat id is required")
)

type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// Send persists a new message with status sent. ClientID deduplicates
// at-least-once sends: if the same client id arrives twice from the same
// sender the stored row is returned instead of a duplicate being created.
func (s *MessageService) Send(senderID uint, chatID uint, clientID string, content string) (*models.Message, error) {
	if chatID == 0 {
		return nil, ErrMissingChat
	}
	content = validation.TrimAndLimit(content, validation.MaxMessageLength())
	if content == "" {
		return nil, ErrEmptyContent
	}
	if clientID == "" {
		clientID = uuid.NewString()
	} else if existing, err := s.messageRepo.FindByClientID(clientID, senderID); err == nil {
		return existing, nil
	}

	message := &models.Message{
		ClientID: clientID,
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		Status:   models.StatusSent,
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Reload with sender display fields for the fan-out payload
	return s.messageRepo.FindByID(message.ID)
}

func (s *MessageService) GetChatMessages(chatID uint) ([]models.Message, error) {
	return s.messageRepo.FindByChat(chatID)
}

// MarkDelivered applies a recipient's bulk delivery ack. Only messages still
// at sent and not authored by the caller transition; the returned slice holds
// exactly those, so every entry warrants a sender notification. The repository
// records the caller's receipt with the transition atomically (first-ack
// policy: message-level status belongs to whoever acked first).
func (s *MessageService) MarkDelivered(callerID uint, chatID uint, messageIDs []uint) ([]models.Message, time.Time, error) {
	now := time.Now().UTC()
	updated, err := s.messageRepo.MarkDelivered(callerID, chatID, messageIDs, now)
	if err != nil {
		return nil, now, err
	}
	return updated, now, nil
}

// MarkChatRead marks every unread message in the chat not authored by the
// caller as read. An empty result is normal, not an error.
func (s *MessageService) MarkChatRead(callerID uint, chatID uint) ([]models.Message, time.Time, error) {
	now := time.Now().UTC()
	if chatID == 0 {
		return nil, now, ErrMissingChat
	}
	updated, err := s.messageRepo.MarkChatRead(callerID, chatID, now)
	if err != nil {
		return nil, now, err
	}
	return updated, now, nil
}

func (s *MessageService) ChatStats(chatID uint) (map[models.MessageStatus]int64, int64, error) {
	counts, err := s.messageRepo.CountByStatus(chatID)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return counts, total, nil
}

func (s *MessageService) ClearChat(chatID uint) (int64, error) {
	return s.messageRepo.DeleteByChat(chatID)
}

func (s *MessageService) GetByClientID(clientID string, senderID uint) (*models.Message, error) {
	msg, err := s.messageRepo.FindByClientID(clientID, senderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return msg, err
}
