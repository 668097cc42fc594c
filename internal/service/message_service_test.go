package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ss2809/Chat/internal/models"
	"gorm.io/gorm"
)

// mockMessageRepository keeps messages in memory and applies the same
// conditional predicates as the real bulk updates. Like the real repository,
// a bulk update and its receipts commit together: receiptErr makes the whole
// operation fail without mutating anything, emulating a rolled-back
// transaction.
type mockMessageRepository struct {
	messages map[uint]*models.Message
	byClient map[string]uint
	receipts []models.MessageReceipt
	nextID   uint

	createErr  error
	markErr    error
	receiptErr error
}

func newMockMessageRepository() *mockMessageRepository {
	return &mockMessageRepository{
		messages: make(map[uint]*models.Message),
		byClient: make(map[string]uint),
		nextID:   1,
	}
}

func (m *mockMessageRepository) Create(message *models.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	message.ID = m.nextID
	m.nextID++
	stored := *message
	m.messages[message.ID] = &stored
	m.byClient[clientKey(message.ClientID, message.SenderID)] = message.ID
	return nil
}

func (m *mockMessageRepository) FindByID(id uint) (*models.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *msg
	for _, r := range m.receipts {
		if r.MessageID == id {
			out.Receipts = append(out.Receipts, r)
		}
	}
	return &out, nil
}

func (m *mockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	id, ok := m.byClient[clientKey(clientID, senderID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.FindByID(id)
}

func (m *mockMessageRepository) FindByChat(chatID uint) ([]models.Message, error) {
	var out []models.Message
	for id := uint(1); id < m.nextID; id++ {
		if msg, ok := m.messages[id]; ok && msg.ChatID == chatID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockMessageRepository) MarkDelivered(callerID uint, chatID uint, messageIDs []uint, at time.Time) ([]models.Message, error) {
	if m.markErr != nil {
		return nil, m.markErr
	}
	var qualifying []*models.Message
	for _, id := range messageIDs {
		msg, ok := m.messages[id]
		if !ok || msg.ChatID != chatID || msg.SenderID == callerID || msg.Status != models.StatusSent {
			continue
		}
		qualifying = append(qualifying, msg)
	}
	if m.receiptErr != nil && len(qualifying) > 0 {
		return nil, m.receiptErr
	}
	var updated []models.Message
	for _, msg := range qualifying {
		msg.Status = models.StatusDelivered
		stamped := at
		msg.DeliveredAt = &stamped
		m.recordReceipt(msg.ID, callerID, models.ReceiptDelivered, at)
		updated = append(updated, *msg)
	}
	return updated, nil
}

func (m *mockMessageRepository) MarkChatRead(callerID uint, chatID uint, at time.Time) ([]models.Message, error) {
	if m.markErr != nil {
		return nil, m.markErr
	}
	var qualifying []*models.Message
	for id := uint(1); id < m.nextID; id++ {
		msg, ok := m.messages[id]
		if !ok || msg.ChatID != chatID || msg.SenderID == callerID || msg.Status == models.StatusRead {
			continue
		}
		qualifying = append(qualifying, msg)
	}
	if m.receiptErr != nil && len(qualifying) > 0 {
		return nil, m.receiptErr
	}
	var updated []models.Message
	for _, msg := range qualifying {
		msg.Status = models.StatusRead
		stamped := at
		msg.ReadAt = &stamped
		m.recordReceipt(msg.ID, callerID, models.ReceiptRead, at)
		updated = append(updated, *msg)
	}
	return updated, nil
}

func (m *mockMessageRepository) recordReceipt(messageID, userID uint, kind models.ReceiptKind, at time.Time) {
	if m.hasReceipt(messageID, userID, kind) {
		return
	}
	m.receipts = append(m.receipts, models.MessageReceipt{
		MessageID: messageID,
		UserID:    userID,
		Kind:      kind,
		StampedAt: at,
	})
}

func (m *mockMessageRepository) CountByStatus(chatID uint) (map[models.MessageStatus]int64, error) {
	counts := make(map[models.MessageStatus]int64)
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			counts[msg.Status]++
		}
	}
	return counts, nil
}

func (m *mockMessageRepository) DeleteByChat(chatID uint) (int64, error) {
	var removed int64
	for id, msg := range m.messages {
		if msg.ChatID == chatID {
			delete(m.messages, id)
			removed++
		}
	}
	return removed, nil
}

func clientKey(clientID string, senderID uint) string {
	return fmt.Sprintf("%s/%d", clientID, senderID)
}

func (m *mockMessageRepository) hasReceipt(messageID, userID uint, kind models.ReceiptKind) bool {
	for _, r := range m.receipts {
		if r.MessageID == messageID && r.UserID == userID && r.Kind == kind {
			return true
		}
	}
	return false
}

func (m *mockMessageRepository) seed(chatID, senderID uint, status models.MessageStatus) *models.Message {
	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  "seeded",
		Status:   status,
	}
	m.Create(msg)
	m.messages[msg.ID].Status = status
	return m.messages[msg.ID]
}

func TestSendCreatesMessageWithStatusSent(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	msg, err := svc.Send(1, 7, "client-1", "  hello world  ")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if msg.Status != models.StatusSent {
		t.Errorf("Status = %q, want %q", msg.Status, models.StatusSent)
	}
	if msg.Content != "hello world" {
		t.Errorf("Content = %q, want trimmed %q", msg.Content, "hello world")
	}
	if msg.ChatID != 7 || msg.SenderID != 1 {
		t.Errorf("message = %+v, wrong chat/sender", msg)
	}
}

func TestSendRejectsEmptyContent(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	for _, content := range []string{"", "   ", "\n\t "} {
		if _, err := svc.Send(1, 7, "", content); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyContent", content, err)
		}
	}
	if len(repo.messages) != 0 {
		t.Errorf("empty sends persisted %d messages, want 0", len(repo.messages))
	}
}

func TestSendRejectsMissingChat(t *testing.T) {
	svc := NewMessageService(newMockMessageRepository())
	if _, err := svc.Send(1, 0, "", "hi"); !errors.Is(err, ErrMissingChat) {
		t.Errorf("Send error = %v, want ErrMissingChat", err)
	}
}

func TestSendDeduplicatesByClientID(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	first, err := svc.Send(1, 7, "client-1", "hello")
	if err != nil {
		t.Fatalf("first Send error: %v", err)
	}
	second, err := svc.Send(1, 7, "client-1", "hello again")
	if err != nil {
		t.Fatalf("second Send error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate client id created new message %d, want %d", second.ID, first.ID)
	}
	if len(repo.messages) != 1 {
		t.Errorf("store holds %d messages, want 1", len(repo.messages))
	}

	// Same client id from a different sender is a different message
	other, err := svc.Send(2, 7, "client-1", "mine")
	if err != nil {
		t.Fatalf("other sender Send error: %v", err)
	}
	if other.ID == first.ID {
		t.Errorf("client id should be scoped per sender")
	}
}

func TestResendReturnsRecordedReceipts(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	msg, err := svc.Send(1, 7, "client-1", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if _, _, err := svc.MarkDelivered(2, 7, []uint{msg.ID}); err != nil {
		t.Fatalf("MarkDelivered error: %v", err)
	}

	// An at-least-once resend returns the stored row, receipts included,
	// so the fan-out payload matches what a fresh fetch would show
	again, err := svc.Send(1, 7, "client-1", "hello")
	if err != nil {
		t.Fatalf("resend error: %v", err)
	}
	resp := again.ToResponse()
	if len(resp.DeliveredTo) != 1 || resp.DeliveredTo[0].UserID != 2 {
		t.Errorf("resend payload DeliveredTo = %v, want the recorded ack from user 2", resp.DeliveredTo)
	}
}

func TestSendGeneratesClientIDWhenOmitted(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	msg, err := svc.Send(1, 7, "", "hello")
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if msg.ClientID == "" {
		t.Errorf("ClientID should be generated when the client omits one")
	}
}

func TestMarkDeliveredTransitionsOnlySentMessages(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	sent := repo.seed(7, 1, models.StatusSent)
	alreadyRead := repo.seed(7, 1, models.StatusRead)
	own := repo.seed(7, 2, models.StatusSent)
	otherChat := repo.seed(8, 1, models.StatusSent)

	updated, at, err := svc.MarkDelivered(2, 7, []uint{sent.ID, alreadyRead.ID, own.ID, otherChat.ID})
	if err != nil {
		t.Fatalf("MarkDelivered error: %v", err)
	}
	if len(updated) != 1 || updated[0].ID != sent.ID {
		t.Fatalf("updated = %v, want exactly the sent message", updated)
	}
	if updated[0].Status != models.StatusDelivered {
		t.Errorf("Status = %q, want %q", updated[0].Status, models.StatusDelivered)
	}
	if updated[0].DeliveredAt == nil || !updated[0].DeliveredAt.Equal(at) {
		t.Errorf("DeliveredAt = %v, want %v", updated[0].DeliveredAt, at)
	}

	if repo.messages[alreadyRead.ID].Status != models.StatusRead {
		t.Errorf("read message regressed to %q", repo.messages[alreadyRead.ID].Status)
	}
	if repo.messages[own.ID].Status != models.StatusSent {
		t.Errorf("caller's own message transitioned to %q", repo.messages[own.ID].Status)
	}
	if repo.messages[otherChat.ID].Status != models.StatusSent {
		t.Errorf("message from another chat transitioned to %q", repo.messages[otherChat.ID].Status)
	}

	if !repo.hasReceipt(sent.ID, 2, models.ReceiptDelivered) {
		t.Errorf("delivery receipt missing for transitioned message")
	}
	if repo.hasReceipt(own.ID, 2, models.ReceiptDelivered) {
		t.Errorf("receipt recorded for a message that did not transition")
	}
}

func TestMarkDeliveredIsIdempotent(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)
	msg := repo.seed(7, 1, models.StatusSent)

	first, _, err := svc.MarkDelivered(2, 7, []uint{msg.ID})
	if err != nil {
		t.Fatalf("first MarkDelivered error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first ack updated %d messages, want 1", len(first))
	}

	second, _, err := svc.MarkDelivered(2, 7, []uint{msg.ID})
	if err != nil {
		t.Fatalf("second MarkDelivered error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second ack updated %d messages, want 0", len(second))
	}
}

func TestMarkDeliveredRetriesAfterTransientFailure(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)
	msg := repo.seed(7, 1, models.StatusSent)

	// First ack hits a transient store failure: the whole operation rolls
	// back, so the message is still at sent and no receipt exists
	repo.receiptErr = errors.New("connection reset")
	if _, _, err := svc.MarkDelivered(2, 7, []uint{msg.ID}); err == nil {
		t.Fatalf("expected transient failure to surface")
	}
	if got := repo.messages[msg.ID].Status; got != models.StatusSent {
		t.Fatalf("failed ack committed status %q, want %q", got, models.StatusSent)
	}
	if repo.hasReceipt(msg.ID, 2, models.ReceiptDelivered) {
		t.Fatalf("failed ack left a receipt behind")
	}

	// Retry after the failure heals: transition and receipt land together
	repo.receiptErr = nil
	updated, _, err := svc.MarkDelivered(2, 7, []uint{msg.ID})
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("retry updated %d messages, want 1", len(updated))
	}
	if got := repo.messages[msg.ID].Status; got != models.StatusDelivered {
		t.Errorf("status after retry = %q, want %q", got, models.StatusDelivered)
	}
	if !repo.hasReceipt(msg.ID, 2, models.ReceiptDelivered) {
		t.Errorf("delivery receipt missing after retry")
	}
}

func TestMarkChatReadRetriesAfterTransientFailure(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)
	msg := repo.seed(7, 1, models.StatusDelivered)

	repo.receiptErr = errors.New("connection reset")
	if _, _, err := svc.MarkChatRead(2, 7); err == nil {
		t.Fatalf("expected transient failure to surface")
	}
	if got := repo.messages[msg.ID].Status; got != models.StatusDelivered {
		t.Fatalf("failed read committed status %q, want %q", got, models.StatusDelivered)
	}

	repo.receiptErr = nil
	updated, _, err := svc.MarkChatRead(2, 7)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("retry updated %d messages, want 1", len(updated))
	}
	if !repo.hasReceipt(msg.ID, 2, models.ReceiptRead) {
		t.Errorf("read receipt missing after retry")
	}
}

func TestMarkDeliveredEmptyIDs(t *testing.T) {
	svc := NewMessageService(newMockMessageRepository())
	updated, _, err := svc.MarkDelivered(2, 7, nil)
	if err != nil {
		t.Fatalf("MarkDelivered error: %v", err)
	}
	if len(updated) != 0 {
		t.Errorf("updated = %v, want empty", updated)
	}
}

func TestMarkChatReadSkipsCallerAndReadMessages(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	unreadSent := repo.seed(7, 1, models.StatusSent)
	unreadDelivered := repo.seed(7, 1, models.StatusDelivered)
	alreadyRead := repo.seed(7, 1, models.StatusRead)
	own := repo.seed(7, 2, models.StatusSent)

	updated, at, err := svc.MarkChatRead(2, 7)
	if err != nil {
		t.Fatalf("MarkChatRead error: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("updated %d messages, want 2 (sent + delivered)", len(updated))
	}
	for _, m := range updated {
		if m.Status != models.StatusRead {
			t.Errorf("message %d status = %q, want %q", m.ID, m.Status, models.StatusRead)
		}
		if m.ReadAt == nil || !m.ReadAt.Equal(at) {
			t.Errorf("message %d ReadAt = %v, want %v", m.ID, m.ReadAt, at)
		}
		if !repo.hasReceipt(m.ID, 2, models.ReceiptRead) {
			t.Errorf("read receipt missing for message %d", m.ID)
		}
	}

	if repo.messages[own.ID].Status != models.StatusSent {
		t.Errorf("caller's own message transitioned")
	}
	if repo.messages[unreadSent.ID].Status != models.StatusRead {
		t.Errorf("sent message not marked read")
	}
	if repo.messages[unreadDelivered.ID].Status != models.StatusRead {
		t.Errorf("delivered message not marked read")
	}
	if repo.hasReceipt(alreadyRead.ID, 2, models.ReceiptRead) {
		t.Errorf("receipt recorded for a message that was already read")
	}

	// Re-reading an all-read chat transitions nothing
	again, _, err := svc.MarkChatRead(2, 7)
	if err != nil {
		t.Fatalf("repeat MarkChatRead error: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("repeat read updated %d messages, want 0", len(again))
	}
}

func TestMarkChatReadRequiresChat(t *testing.T) {
	svc := NewMessageService(newMockMessageRepository())
	if _, _, err := svc.MarkChatRead(2, 0); !errors.Is(err, ErrMissingChat) {
		t.Errorf("MarkChatRead error = %v, want ErrMissingChat", err)
	}
}

func TestMarkDeliveredPropagatesRepositoryError(t *testing.T) {
	repo := newMockMessageRepository()
	repo.markErr = errors.New("connection reset")
	svc := NewMessageService(repo)

	if _, _, err := svc.MarkDelivered(2, 7, []uint{1}); err == nil {
		t.Errorf("expected repository error to surface")
	}
}

func TestChatStats(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	repo.seed(7, 1, models.StatusSent)
	repo.seed(7, 1, models.StatusDelivered)
	repo.seed(7, 1, models.StatusRead)
	repo.seed(7, 2, models.StatusRead)
	repo.seed(9, 1, models.StatusSent)

	counts, total, err := svc.ChatStats(7)
	if err != nil {
		t.Fatalf("ChatStats error: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if counts[models.StatusSent] != 1 || counts[models.StatusDelivered] != 1 || counts[models.StatusRead] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestClearChat(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewMessageService(repo)

	repo.seed(7, 1, models.StatusSent)
	repo.seed(7, 2, models.StatusRead)
	repo.seed(9, 1, models.StatusSent)

	removed, err := svc.ClearChat(7)
	if err != nil {
		t.Fatalf("ClearChat error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	remaining, _ := repo.FindByChat(9)
	if len(remaining) != 1 {
		t.Errorf("other chat lost messages")
	}
}
