package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat groups a set of participants sharing a message history. The realtime
// layer treats the ID as an opaque routing key; membership is only consulted
// for the destructive REST operations (clear history).
type Chat struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Participants []User `gorm:"many2many:chat_participants;" json:"participants"`
}
