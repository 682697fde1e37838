package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-relay/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidExpense = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense checks the fields every ledger row must carry.
func validateExpense(e *model.CategorizedExpense) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidExpense)
	case !e.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	case e.Currency == "":
		return fmt.Errorf("%w: currency is required", ErrInvalidExpense)
	case !e.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidExpense, e.Category)
	case e.RecordedAt.IsZero():
		return fmt.Errorf("%w: recorded time is required", ErrInvalidExpense)
	}
	return nil
}
