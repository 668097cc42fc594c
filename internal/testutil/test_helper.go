package testutil

import (
	"testing"
	"time"

	"github.com/Ss2809/Chat/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}

	return &models.User{
		ID:        id,
		Username:  username,
		Avatar:    "https://example.com/avatar.jpg",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestMessage creates a test message with default values
func (h *TestHelper) CreateTestMessage(id uint, chatID uint, senderID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if chatID == 0 {
		chatID = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if content == "" {
		content = "Test message"
	}

	return &models.Message{
		ID:        id,
		ClientID:  "client-test",
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Status:    models.StatusSent,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
