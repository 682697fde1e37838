package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "classify [description]",
		Short:   "Classify a purchase description into a category",
		Example: `  spice-relay classify "lunch with friends"`,
		RunE:    runClassify,
	}
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	description, err := argsOrStdin(cmd, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newLLMClient(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	category, err := llm.NewCategoryClassifier(client, cfg.LLM.Model, logger).Classify(ctx, description)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), category)
	return err
}
