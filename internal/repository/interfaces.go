package repository

import (
	"time"

	"github.com/Ss2809/Chat/internal/models"
)

// UserRepositoryInterface defines the contract for user directory lookups
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	Exists(id uint) (bool, error)
}

// ChatRepositoryInterface defines the contract for chat membership lookups
type ChatRepositoryInterface interface {
	FindByID(id uint) (*models.Chat, error)
	IsParticipant(chatID, userID uint) (bool, error)
}

// MessageRepositoryInterface defines the contract for the message store.
// MarkDelivered and MarkChatRead are conditional bulk updates: the status
// predicate is part of the UPDATE itself, so concurrent acks for the same
// message cannot regress status and repeated acks transition nothing. Each
// records the caller's receipts in the same transaction as the transition;
// either both land or neither does.
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindByChat(chatID uint) ([]models.Message, error)
	MarkDelivered(callerID uint, chatID uint, messageIDs []uint, at time.Time) ([]models.Message, error)
	MarkChatRead(callerID uint, chatID uint, at time.Time) ([]models.Message, error)
	CountByStatus(chatID uint) (map[models.MessageStatus]int64, error)
	DeleteByChat(chatID uint) (int64, error)
}
