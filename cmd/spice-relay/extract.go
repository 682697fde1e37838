package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [notification text]",
		Short: "Extract a transaction from a notification",
		Long: `Run the extraction step once and print the result as JSON.
With no arguments the notification is read from stdin.`,
		Example: `  spice-relay extract "Compra por $2,349 con Tarjeta de Crédito en Falabella"`,
		RunE:    runExtract,
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	text, err := argsOrStdin(cmd, args)
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

	result := llm.NewExtractor(client, cfg.LLM.Model, logger).Extract(ctx, text)
	return printExtraction(cmd.OutOrStdout(), result)
}

type extractionOutput struct {
	Amount         string `json:"amount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	RawDescription string `json:"raw_description,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Recognized     bool   `json:"recognized"`
}

func printExtraction(w io.Writer, result model.ExtractionResult) error {
	var out extractionOutput
	switch r := result.(type) {
	case model.Recognized:
		out = extractionOutput{
			Recognized:     true,
			Amount:         r.Amount.String(),
			Currency:       r.Currency,
			RawDescription: r.RawDescription,
		}
	case model.NotRecognized:
		out = extractionOutput{Reason: r.Reason}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// argsOrStdin joins args, or reads stdin when there are none.
func argsOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
