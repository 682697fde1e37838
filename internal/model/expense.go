package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategorizedExpense is a pending transaction merged with the user's
// description and its category. It is the row written to the ledger.
type CategorizedExpense struct {
	RecordedAt      time.Time
	Amount          decimal.Decimal
	ID              string
	Currency        string
	RawDescription  string
	UserDescription string
	Category        Category
}

// NewCategorizedExpense merges a pending transaction with a reply. The expense
// takes the transaction's reserved ExpenseID when there is one.
func NewCategorizedExpense(txn PendingTransaction, userDescription string, category Category, now time.Time) CategorizedExpense {
	id := txn.ExpenseID
	if id == "" {
		id = uuid.NewString()
	}
	return CategorizedExpense{
		ID:              id,
		RecordedAt:      now,
		Amount:          txn.Amount,
		Currency:        txn.Currency,
		RawDescription:  txn.RawDescription,
		UserDescription: userDescription,
		Category:        category,
	}
}

// Row returns the ledger cells in column order:
// amount, currency, merchant, user description, category.
func (e CategorizedExpense) Row() []any {
	return []any{
		e.Amount.InexactFloat64(),
		e.Currency,
		e.RawDescription,
		e.UserDescription,
		string(e.Category),
	}
}
