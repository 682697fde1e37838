package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecognized_Pending(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := Recognized{
		Amount:         decimal.NewFromInt(2349),
		Currency:       "CLP",
		RawDescription: "Falabella",
	}

	got := r.Pending("42", now)

	assert.Equal(t, "42", got.ChatID)
	assert.True(t, got.Amount.Equal(r.Amount))
	assert.Equal(t, "CLP", got.Currency)
	assert.Equal(t, "Falabella", got.RawDescription)
	assert.Equal(t, now, got.CreatedAt)
	assert.NotEmpty(t, got.ID)
	assert.Empty(t, got.ExpenseID)
	assert.NotEqual(t, got.ID, r.Pending("42", now).ID)
}

func TestExtractionResult_Variants(t *testing.T) {
	results := []ExtractionResult{
		Recognized{Amount: decimal.NewFromInt(1), Currency: "USD", RawDescription: "x"},
		NotRecognized{Reason: "not a charge"},
	}

	var recognized, ignored int
	for _, r := range results {
		switch r.(type) {
		case Recognized:
			recognized++
		case NotRecognized:
			ignored++
		}
	}
	assert.Equal(t, 1, recognized)
	assert.Equal(t, 1, ignored)
}
