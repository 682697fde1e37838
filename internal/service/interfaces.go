// Package service defines the interfaces between the correlation pipeline and
// its collaborators.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
)

// Extractor turns a raw bank notification into an extraction result.
// Implementations never fail: anything unreadable is NotRecognized.
type Extractor interface {
	Extract(ctx context.Context, notification string) model.ExtractionResult
}

// Classifier maps a free-text purchase description to a category from the
// closed set.
type Classifier interface {
	Classify(ctx context.Context, description string) (model.Category, error)
}

// PendingStore holds at most one pending transaction per chat.
type PendingStore interface {
	Set(txn model.PendingTransaction)
	Get(chatID string) (model.PendingTransaction, bool)
	// Update replaces an entry only if it still holds the same transaction.
	Update(txn model.PendingTransaction) bool
}

// Notifier delivers outbound text to a recipient.
type Notifier interface {
	Send(ctx context.Context, recipientID, text string) error
}

// LedgerWriter appends a finished expense to durable storage.
type LedgerWriter interface {
	Append(ctx context.Context, expense model.CategorizedExpense) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
