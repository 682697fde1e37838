package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingTransaction is a recognized purchase that is waiting for the user
// to describe it.
type PendingTransaction struct {
	CreatedAt      time.Time
	Amount         decimal.Decimal
	ID             string
	ChatID         string // conversation the transaction belongs to
	Currency       string
	RawDescription string // merchant text as cleaned by the extractor
	// ExpenseID is reserved by a ledger write that did not complete. The
	// next reply reuses it so that ledgers can recognize the retry.
	ExpenseID string
}

// ExtractionResult is the outcome of reading a bank notification. It is
// either Recognized or NotRecognized.
type ExtractionResult interface {
	isExtractionResult()
}

// Recognized is a notification that describes a credit card charge.
type Recognized struct {
	Amount         decimal.Decimal
	Currency       string
	RawDescription string
}

// NotRecognized is a notification that is not a charge, or one that could not
// be read. Reason is meant for logs only.
type NotRecognized struct {
	Reason string
}

func (Recognized) isExtractionResult()    {}
func (NotRecognized) isExtractionResult() {}

// Pending turns a recognized charge into a pending transaction owned by chatID.
func (r Recognized) Pending(chatID string, now time.Time) PendingTransaction {
	return PendingTransaction{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		Amount:         r.Amount,
		ChatID:         chatID,
		Currency:       r.Currency,
		RawDescription: r.RawDescription,
	}
}
