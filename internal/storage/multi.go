package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/Veraticus/spice-relay/internal/service"
)

// NamedLedger pairs a ledger with a name used in errors.
type NamedLedger struct {
	Writer service.LedgerWriter
	Name   string
}

// MultiLedger appends every expense to each of its ledgers in order.
//
// After a partial failure it remembers which ledgers took the expense, so a
// retry with the same expense ID only goes to the ledgers that missed it.
// That memory lives in the process and is lost on restart.
type MultiLedger struct {
	accepted map[string]map[string]struct{} // expense ID -> ledger names
	ledgers  []NamedLedger
	mu       sync.Mutex
}

// NewMultiLedger creates a ledger that fans out to ledgers.
func NewMultiLedger(ledgers ...NamedLedger) *MultiLedger {
	return &MultiLedger{
		accepted: make(map[string]map[string]struct{}),
		ledgers:  ledgers,
	}
}

// Append writes expense to every ledger that has not already accepted it.
// All pending ledgers are attempted; the result fails if any of them failed.
func (m *MultiLedger) Append(ctx context.Context, expense model.CategorizedExpense) error {
	if len(m.ledgers) == 0 {
		return errors.New("no ledgers configured")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	done := m.accepted[expense.ID]

	var errs []error
	for _, l := range m.ledgers {
		if _, ok := done[l.Name]; ok {
			continue
		}
		if err := l.Writer.Append(ctx, expense); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Name, err))
			continue
		}
		if done == nil {
			done = make(map[string]struct{}, len(m.ledgers))
		}
		done[l.Name] = struct{}{}
	}

	if len(errs) == 0 {
		delete(m.accepted, expense.ID)
		return nil
	}
	if done != nil {
		m.accepted[expense.ID] = done
	}
	return errors.Join(errs...)
}
