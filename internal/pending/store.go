// Package pending holds transactions that are waiting for the user to say
// what they were.
package pending

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/robfig/cron/v3"
)

// Store keeps one pending transaction per chat. A new transaction for a chat
// replaces the previous one, and reading an entry does not remove it.
type Store struct {
	entries map[string]model.PendingTransaction
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// NewStore creates an empty store. Entries older than ttl are treated as
// gone; a ttl of zero keeps them forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]model.PendingTransaction),
		now:     time.Now,
		ttl:     ttl,
	}
}

// Set stores txn under its chat id, replacing whatever was there.
func (s *Store) Set(txn model.PendingTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.now()
	}
	s.entries[txn.ChatID] = txn
}

// Get returns the pending transaction for chatID, if any.
func (s *Store) Get(chatID string) (model.PendingTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.entries[chatID]
	if !ok || s.expired(txn) {
		return model.PendingTransaction{}, false
	}
	return txn, true
}

// Update replaces the entry for txn.ChatID only while that entry is still the
// same transaction. It reports whether the entry was replaced; a newer
// notification for the chat is never overwritten.
func (s *Store) Update(txn model.PendingTransaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[txn.ChatID]
	if !ok || current.ID != txn.ID || s.expired(current) {
		return false
	}
	txn.CreatedAt = current.CreatedAt
	s.entries[txn.ChatID] = txn
	return true
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for chatID, txn := range s.entries {
		if s.expired(txn) {
			delete(s.entries, chatID)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(txn model.PendingTransaction) bool {
	return s.ttl > 0 && s.now().Sub(txn.CreatedAt) > s.ttl
}

// ScheduleEviction starts a cron scheduler that sweeps the store on spec,
// e.g. "@every 10m". The caller stops the returned scheduler.
func (s *Store) ScheduleEviction(spec string, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		if removed := s.Sweep(); removed > 0 {
			logger.Info("Evicted expired pending transactions", "count", removed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule pending eviction %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
