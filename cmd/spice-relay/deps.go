package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-relay/internal/config"
	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/Veraticus/spice-relay/internal/service"
	"github.com/Veraticus/spice-relay/internal/sheets"
	"github.com/Veraticus/spice-relay/internal/storage"
)

// newLLMClient validates the llm section and creates the guarded client.
func newLLMClient(ctx context.Context, cfg llm.Config, logger *slog.Logger) (*llm.GuardedClient, error) {
	if err := config.ValidateLLM(cfg); err != nil {
		return nil, err
	}
	return llm.NewClient(ctx, cfg, logger)
}

// openSQLite opens and migrates the local ledger.
func openSQLite(ctx context.Context, path string) (*storage.SQLiteLedger, error) {
	ledger, err := storage.NewSQLiteLedger(path)
	if err != nil {
		return nil, err
	}
	if err := ledger.Migrate(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return ledger, nil
}

// newLedger builds the configured ledger backends. The returned closer
// releases whatever was opened.
func newLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.LedgerWriter, func() error, error) {
	if err := cfg.ValidateLedger(); err != nil {
		return nil, nil, err
	}

	var (
		ledgers []storage.NamedLedger
		closers []func() error
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	for _, backend := range cfg.Ledger.Backends {
		switch backend {
		case config.BackendSheets:
			writer, err := sheets.NewWriter(ctx, cfg.Sheets, logger)
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			ledgers = append(ledgers, storage.NamedLedger{Name: backend, Writer: writer})

		case config.BackendSQLite:
			ledger, err := openSQLite(ctx, cfg.Ledger.SQLitePath)
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			closers = append(closers, ledger.Close)
			ledgers = append(ledgers, storage.NamedLedger{Name: backend, Writer: ledger})
		}
	}

	logger.Info("Ledger ready", "backends", cfg.Ledger.Backends)

	if len(ledgers) == 1 {
		return ledgers[0].Writer, closeAll, nil
	}
	return storage.NewMultiLedger(ledgers...), closeAll, nil
}
