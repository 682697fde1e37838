package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/Veraticus/spice-relay/internal/storage"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local ledger to an Excel workbook",
		Long: `Export expenses recorded in the SQLite ledger to an .xlsx workbook with an
Expenses sheet and a per-category Summary sheet.`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("out", "o", "expenses.xlsx", "output file")
	cmd.Flags().String("since", "", "only expenses on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("until", "", "only expenses before this date (YYYY-MM-DD)")
	cmd.Flags().String("category", "", "only expenses in this category")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter, err := exportFilter(cmd)
	if err != nil {
		return err
	}

	ledger, err := openSQLite(ctx, cfg.Ledger.SQLitePath)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	expenses, err := ledger.List(ctx, filter)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	f, err := os.Create(outPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	if err := storage.ExportXLSX(f, expenses); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", outPath, err)
	}

	slog.Info("Exported ledger", "file", outPath, "expenses", len(expenses))
	return nil
}

func exportFilter(cmd *cobra.Command) (storage.ListFilter, error) {
	var filter storage.ListFilter

	for flag, dst := range map[string]*time.Time{"since": &filter.Since, "until": &filter.Until} {
		value, _ := cmd.Flags().GetString(flag)
		if value == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return filter, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
		}
		*dst = t
	}

	if value, _ := cmd.Flags().GetString("category"); value != "" {
		category := model.Category(value)
		if !category.Valid() {
			return filter, fmt.Errorf("unknown category %q", value)
		}
		filter.Category = category
	}

	return filter, nil
}
