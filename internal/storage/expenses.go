package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/shopspring/decimal"
)

// Append implements service.LedgerWriter. Appending an expense id that is
// already stored is a no-op.
func (s *SQLiteLedger) Append(ctx context.Context, expense model.CategorizedExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(&expense); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, recorded_at, amount, currency, raw_description, user_description, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		expense.ID,
		expense.RecordedAt.UTC(),
		expense.Amount.String(),
		expense.Currency,
		expense.RawDescription,
		expense.UserDescription,
		string(expense.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Since    time.Time
	Until    time.Time
	Category model.Category
}

// List returns stored expenses oldest first.
func (s *SQLiteLedger) List(ctx context.Context, filter ListFilter) ([]model.CategorizedExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !filter.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		where = append(where, "recorded_at < ?")
		args = append(args, filter.Until.UTC())
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}

	query := `SELECT id, recorded_at, amount, currency, raw_description, user_description, category FROM expenses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.CategorizedExpense
	for rows.Next() {
		var (
			e        model.CategorizedExpense
			amount   string
			category string
		)
		if err := rows.Scan(&e.ID, &e.RecordedAt, &amount, &e.Currency, &e.RawDescription, &e.UserDescription, &category); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		e.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q for expense %s: %w", amount, e.ID, err)
		}
		e.Category = model.ParseCategory(category)
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// CategoryTotal is the spend for one category in one currency.
type CategoryTotal struct {
	Total    decimal.Decimal
	Category model.Category
	Currency string
	Count    int
}

// Totals sums expenses per category and currency, in category order.
func Totals(expenses []model.CategorizedExpense) []CategoryTotal {
	type key struct {
		category model.Category
		currency string
	}

	sums := make(map[key]*CategoryTotal)
	var currencies []string
	seen := make(map[string]bool)

	for _, e := range expenses {
		k := key{e.Category, e.Currency}
		t, ok := sums[k]
		if !ok {
			t = &CategoryTotal{Category: e.Category, Currency: e.Currency}
			sums[k] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++

		if !seen[e.Currency] {
			seen[e.Currency] = true
			currencies = append(currencies, e.Currency)
		}
	}

	var out []CategoryTotal
	for _, c := range model.Categories() {
		for _, cur := range currencies {
			if t, ok := sums[key{c, cur}]; ok {
				out = append(out, *t)
			}
		}
	}
	return out
}
