package repository

import (
	"github.com/Ss2809/Chat/internal/models"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) FindByID(id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.Preload("Participants").First(&chat, id).Error
	return &chat, err
}

func (r *ChatRepository) IsParticipant(chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("chat_participants").
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}
