package repository

import (
	"time"

	"github.com/Ss2809/Chat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").Preload("Receipts").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").Preload("Receipts").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	return &message, err
}

func (r *MessageRepository) FindByChat(chatID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").Preload("Receipts").
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkDelivered transitions sent -> delivered for the given messages, skipping
// anything authored by the caller or already past sent. The predicate is baked
// into the UPDATE so racing acks cannot regress a message; RETURNING yields
// exactly the rows that transitioned. The caller's receipts are written in the
// same transaction: a retry after a partial failure must still find the rows
// at sent, otherwise the receipt would be lost for good.
func (r *MessageRepository) MarkDelivered(callerID uint, chatID uint, messageIDs []uint, at time.Time) ([]models.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var updated []models.Message
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&updated).
			Clauses(clause.Returning{}).
			Where("id IN ? AND chat_id = ? AND sender_id <> ? AND status = ?",
				messageIDs, chatID, callerID, models.StatusSent).
			Updates(map[string]interface{}{
				"status":       models.StatusDelivered,
				"delivered_at": at,
			}).Error; err != nil {
			return err
		}
		return addReceipts(tx, updated, callerID, models.ReceiptDelivered, at)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkChatRead transitions every not-yet-read message in the chat that the
// caller did not author. Messages still at sent jump straight to read.
// Transition and read receipts commit atomically, as in MarkDelivered.
func (r *MessageRepository) MarkChatRead(callerID uint, chatID uint, at time.Time) ([]models.Message, error) {
	var updated []models.Message
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&updated).
			Clauses(clause.Returning{}).
			Where("chat_id = ? AND sender_id <> ? AND status <> ?",
				chatID, callerID, models.StatusRead).
			Updates(map[string]interface{}{
				"status":  models.StatusRead,
				"read_at": at,
			}).Error; err != nil {
			return err
		}
		return addReceipts(tx, updated, callerID, models.ReceiptRead, at)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// addReceipts records the acker against each transitioned message. ON CONFLICT
// DO NOTHING gives set semantics: one row per (message, user, kind) no matter
// how often a client re-acks.
func addReceipts(tx *gorm.DB, updated []models.Message, userID uint, kind models.ReceiptKind, at time.Time) error {
	if len(updated) == 0 {
		return nil
	}
	receipts := make([]models.MessageReceipt, 0, len(updated))
	for _, m := range updated {
		receipts = append(receipts, models.MessageReceipt{
			MessageID: m.ID,
			UserID:    userID,
			Kind:      kind,
			StampedAt: at,
		})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&receipts).Error
}

func (r *MessageRepository) CountByStatus(chatID uint) (map[models.MessageStatus]int64, error) {
	type row struct {
		Status models.MessageStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.Message{}).
		Select("status, COUNT(*) as count").
		Where("chat_id = ?", chatID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.MessageStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// DeleteByChat removes a chat's full history in one statement. Receipts go
// first so a failure between the two deletes never leaves orphaned receipts
// pointing at live messages.
func (r *MessageRepository) DeleteByChat(chatID uint) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id IN (?)",
			tx.Model(&models.Message{}).Select("id").Where("chat_id = ?", chatID),
		).Delete(&models.MessageReceipt{}).Error; err != nil {
			return err
		}
		res := tx.Where("chat_id = ?", chatID).Delete(&models.Message{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
