package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/Veraticus/spice-relay/internal/pending"
	"github.com/Veraticus/spice-relay/internal/pipeline"
	"github.com/Veraticus/spice-relay/internal/server"
	"github.com/Veraticus/spice-relay/internal/telegram"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Long: `Run the HTTP server that receives bank notifications on /notification and
Telegram updates on /webhook.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := newLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ledger, closeLedger, err := newLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up ledger: %w", err)
	}
	defer func() {
		if err := closeLedger(); err != nil {
			logger.Warn("Failed to close ledger", "error", err)
		}
	}()

	notifier, err := telegram.NewNotifier(cfg.Telegram, logger)
	if err != nil {
		return err
	}

	store := pending.NewStore(cfg.Pending.TTL)
	if cfg.Pending.TTL > 0 && cfg.Pending.Sweep != "" {
		scheduler, err := store.ScheduleEviction(cfg.Pending.Sweep, logger)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	p, err := pipeline.New(pipeline.Deps{
		Extractor:  llm.NewExtractor(client, cfg.LLM.Model, logger),
		Classifier: llm.NewCategoryClassifier(client, cfg.LLM.Model, logger),
		Store:      store,
		Notifier:   notifier,
		Ledger:     ledger,
		Logger:     logger,
		Recipient:  cfg.ChatID,
	})
	if err != nil {
		return err
	}

	logger.Info("Starting spice-relay",
		"version", version,
		"addr", cfg.Server.Addr,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"pending_ttl", cfg.Pending.TTL)

	return server.New(p, cfg.Server, logger).ListenAndServe(ctx)
}
