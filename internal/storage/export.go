package storage

import (
	"fmt"
	"io"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names in exported workbooks.
const (
	ExpensesSheet = "Expenses"
	SummarySheet  = "Summary"
)

var expenseHeaders = []any{"Recorded At", "Amount", "Currency", "Merchant", "Description", "Category", "ID"}

// ExportXLSX writes expenses and per-category totals as an xlsx workbook.
func ExportXLSX(w io.Writer, expenses []model.CategorizedExpense) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := f.SetSheetRow(ExpensesSheet, "A1", &expenseHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
			e.Amount.InexactFloat64(),
			e.Currency,
			e.RawDescription,
			e.UserDescription,
			string(e.Category),
			e.ID,
		}
		if err := f.SetSheetRow(ExpensesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &[]any{"Category", "Currency", "Count", "Total"}); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, t := range Totals(expenses) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{string(t.Category), t.Currency, t.Count, t.Total.InexactFloat64()}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(ExpensesSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
