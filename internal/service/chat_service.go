package service

import (
	"errors"

	"github.com/Ss2809/Chat/internal/models"
	"github.com/Ss2809/Chat/internal/repository"
	"gorm.io/gorm"
)

var ErrNotParticipant = errors.New("user is not a participant of this chat")

type ChatService struct {
	chatRepo repository.ChatRepositoryInterface
}

func NewChatService(chatRepo repository.ChatRepositoryInterface) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

func (s *ChatService) GetChat(chatID uint) (*models.Chat, error) {
	return s.chatRepo.FindByID(chatID)
}

// RequireParticipant gates the destructive chat operations. A missing chat
// reads as not-a-participant rather than an internal error.
func (s *ChatService) RequireParticipant(chatID, userID uint) error {
	ok, err := s.chatRepo.IsParticipant(chatID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotParticipant
	}
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return nil
}
