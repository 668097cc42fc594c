package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// statusRank orders the delivery states. Transitions only ever move to a
// higher rank; the conditional update predicates in the repository enforce
// this, Rank exists so callers and tests can state the invariant.
var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

func (s MessageStatus) Rank() int {
	return statusRank[s]
}

// Before reports whether s is an earlier delivery state than other.
func (s MessageStatus) Before(other MessageStatus) bool {
	return s.Rank() < other.Rank()
}

type ReceiptKind string

const (
	ReceiptDelivered ReceiptKind = "delivered"
	ReceiptRead      ReceiptKind = "read"
)

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client-side tracking
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"` // UUID for deduplication

	ChatID   uint `gorm:"not null;index" json:"chat_id"`
	SenderID uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	Content string `gorm:"type:text;not null" json:"content"`

	// Status tracking. Status advances on the first qualifying ack
	// (first-ack policy); per-recipient acks live in Receipts.
	Status      MessageStatus `gorm:"type:varchar(20);default:'sent';index" json:"status"`
	DeliveredAt *time.Time    `json:"delivered_at"`
	ReadAt      *time.Time    `json:"read_at"`

	Receipts []MessageReceipt `gorm:"foreignKey:MessageID" json:"-"`
}

// MessageReceipt records one recipient's delivery or read acknowledgment.
// The composite unique index makes repeated acks from the same user a no-op.
type MessageReceipt struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	MessageID uint        `gorm:"not null;uniqueIndex:idx_message_user_kind" json:"message_id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_message_user_kind" json:"user_id"`
	Kind      ReceiptKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_message_user_kind" json:"kind"`
	StampedAt time.Time   `gorm:"not null" json:"stamped_at"`
}

type ReceiptEntry struct {
	UserID    uint      `json:"user_id"`
	StampedAt time.Time `json:"stamped_at"`
}

type MessageResponse struct {
	ID          uint           `json:"id"`
	ClientID    string         `json:"client_id"`
	ChatID      uint           `json:"chat_id"`
	SenderID    uint           `json:"sender_id"`
	Sender      UserResponse   `json:"sender"`
	Content     string         `json:"content"`
	Status      MessageStatus  `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	ReadAt      *time.Time     `json:"read_at"`
	DeliveredTo []ReceiptEntry `json:"delivered_to"`
	ReadBy      []ReceiptEntry `json:"read_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	resp := MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Sender:      m.Sender.ToResponse(),
		Content:     m.Content,
		Status:      m.Status,
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
		DeliveredTo: []ReceiptEntry{},
		ReadBy:      []ReceiptEntry{},
		CreatedAt:   m.CreatedAt,
	}
	for _, r := range m.Receipts {
		entry := ReceiptEntry{UserID: r.UserID, StampedAt: r.StampedAt}
		switch r.Kind {
		case ReceiptDelivered:
			resp.DeliveredTo = append(resp.DeliveredTo, entry)
		case ReceiptRead:
			resp.ReadBy = append(resp.ReadBy, entry)
		}
	}
	return resp
}
