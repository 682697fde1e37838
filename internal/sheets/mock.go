package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/spice-relay/internal/model"
)

// MockWriter is a mock ledger writer for testing.
type MockWriter struct {
	AppendFunc  func(ctx context.Context, expense model.CategorizedExpense) error
	AppendCalls []AppendCall
	mu          sync.Mutex
}

// AppendCall represents a single call to Append.
type AppendCall struct {
	Error   error
	Expense model.CategorizedExpense
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{
		AppendCalls: make([]AppendCall, 0),
	}
}

// Append implements service.LedgerWriter.
func (m *MockWriter) Append(ctx context.Context, expense model.CategorizedExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.AppendFunc != nil {
		err = m.AppendFunc(ctx, expense)
	}

	m.AppendCalls = append(m.AppendCalls, AppendCall{
		Expense: expense,
		Error:   err,
	})

	return err
}

// GetAppendCalls returns a copy of all append calls.
func (m *MockWriter) GetAppendCalls() []AppendCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]AppendCall, len(m.AppendCalls))
	copy(calls, m.AppendCalls)
	return calls
}

// Rows returns the ledger row of every successful append.
func (m *MockWriter) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([][]any, 0, len(m.AppendCalls))
	for _, call := range m.AppendCalls {
		if call.Error == nil {
			rows = append(rows, call.Expense.Row())
		}
	}
	return rows
}

// SetAppendError configures the mock to fail every Append call with err.
func (m *MockWriter) SetAppendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendFunc = func(_ context.Context, _ model.CategorizedExpense) error {
		return err
	}
}
