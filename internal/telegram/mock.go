package telegram

import (
	"context"
	"sync"
)

// SentMessage is a message recorded by MockNotifier.
type SentMessage struct {
	ChatID string
	Text   string
}

// MockNotifier records messages instead of sending them.
type MockNotifier struct {
	SendFunc func(ctx context.Context, chatID, text string) error
	sent     []SentMessage
	mu       sync.Mutex
}

// NewMockNotifier creates a recording notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements service.Notifier. The message is recorded even when
// SendFunc fails it.
func (m *MockNotifier) Send(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentMessage{ChatID: chatID, Text: text})
	fn := m.SendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, chatID, text)
	}
	return nil
}

// Sent returns a copy of every recorded message.
func (m *MockNotifier) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Texts returns the text of every recorded message.
func (m *MockNotifier) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.Text)
	}
	return out
}
