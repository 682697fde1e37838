package pending

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(chatID, description string, amount int64) model.PendingTransaction {
	return model.PendingTransaction{
		ChatID:         chatID,
		Amount:         decimal.NewFromInt(amount),
		Currency:       "CLP",
		RawDescription: description,
	}
}

func TestStore_SetGet(t *testing.T) {
	s := NewStore(0)

	_, ok := s.Get("42")
	assert.False(t, ok, "empty store has nothing pending")

	s.Set(txn("42", "Falabella", 2349))

	got, ok := s.Get("42")
	require.True(t, ok)
	assert.Equal(t, "Falabella", got.RawDescription)
	assert.False(t, got.CreatedAt.IsZero(), "Set stamps creation time")

	// Reads do not consume.
	_, ok = s.Get("42")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_LastWriterWins(t *testing.T) {
	s := NewStore(0)

	s.Set(txn("42", "A", 100))
	s.Set(txn("42", "B", 200))

	got, ok := s.Get("42")
	require.True(t, ok)
	assert.Equal(t, "B", got.RawDescription)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, s.Len())
}

func TestStore_Update(t *testing.T) {
	s := NewStore(time.Hour)

	first := txn("42", "Falabella", 2349)
	first.ID = "txn-1"
	s.Set(first)

	reserved := first
	reserved.ExpenseID = "expense-1"
	require.True(t, s.Update(reserved))

	got, ok := s.Get("42")
	require.True(t, ok)
	assert.Equal(t, "expense-1", got.ExpenseID)

	newer := txn("42", "Uber", 12)
	newer.ID = "txn-2"
	s.Set(newer)

	stale := reserved
	stale.ExpenseID = ""
	assert.False(t, s.Update(stale), "a newer transaction is not overwritten")

	got, ok = s.Get("42")
	require.True(t, ok)
	assert.Equal(t, "Uber", got.RawDescription)

	missing := txn("7", "Lider", 500)
	missing.ID = "txn-3"
	assert.False(t, s.Update(missing))
	assert.Equal(t, 1, s.Len())
}

func TestStore_KeyedByChat(t *testing.T) {
	s := NewStore(0)

	s.Set(txn("1", "Jumbo", 10))
	s.Set(txn("2", "Copec", 20))

	one, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Jumbo", one.RawDescription)

	two, ok := s.Get("2")
	require.True(t, ok)
	assert.Equal(t, "Copec", two.RawDescription)

	_, ok = s.Get("3")
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Hour)
	s.now = func() time.Time { return now }

	s.Set(txn("42", "Falabella", 2349))
	s.Set(txn("7", "Lider", 500))

	now = now.Add(30 * time.Minute)
	s.Set(txn("7", "Lider", 600))

	now = now.Add(45 * time.Minute)

	_, ok := s.Get("42")
	assert.False(t, ok, "entry older than ttl is hidden")

	_, ok = s.Get("7")
	assert.True(t, ok, "overwritten entry restarts its clock")

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_NoExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(0)
	s.now = func() time.Time { return now }

	s.Set(txn("42", "Falabella", 2349))
	now = now.Add(365 * 24 * time.Hour)

	_, ok := s.Get("42")
	assert.True(t, ok)
	assert.Equal(t, 0, s.Sweep())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Set(txn("42", "shop", int64(i+1)))
		}(i)
		go func() {
			defer wg.Done()
			s.Get("42")
			s.Sweep()
		}()
	}
	wg.Wait()

	got, ok := s.Get("42")
	require.True(t, ok)
	assert.True(t, got.Amount.IsPositive())
}

func TestStore_ScheduleEviction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewStore(time.Hour)
		_, err := s.ScheduleEviction("not a schedule", logger)
		require.Error(t, err)
	})

	t.Run("sweeps on schedule", func(t *testing.T) {
		s := NewStore(time.Millisecond)
		s.Set(txn("42", "Falabella", 2349))

		c, err := s.ScheduleEviction("@every 1s", logger)
		require.NoError(t, err)
		defer c.Stop()

		assert.Eventually(t, func() bool { return s.Len() == 0 }, 3*time.Second, 50*time.Millisecond)
	})
}
