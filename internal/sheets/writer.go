package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/Veraticus/spice-relay/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrAppendUnconfirmed means an append request failed without an answer from
// the API. The row may or may not have been written, so it is not retried.
var ErrAppendUnconfirmed = errors.New("append not confirmed")

// Writer appends expenses as rows to a spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a Writer authenticated with the credentials in config.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithService(srv, config, logger), nil
}

// NewWriterWithService creates a Writer around an existing Sheets service.
func NewWriterWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		service: srv,
		logger:  logger,
		config:  config,
	}
}

// Append writes expense as one row: amount, currency, merchant, the user's
// description and category. Values are stored as given, without parsing.
func (w *Writer) Append(ctx context.Context, expense model.CategorizedExpense) error {
	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 1
	}

	valueRange := &sheets.ValueRange{
		Values: [][]any{expense.Row()},
	}

	var updatedRange string
	err := common.WithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, w.config.timeout())
		defer cancel()

		resp, err := w.service.Spreadsheets.Values.Append(w.config.SpreadsheetID, w.config.appendRange(), valueRange).
			ValueInputOption("RAW").
			Context(callCtx).
			Do()
		if err != nil {
			return classifyError(err)
		}
		if resp.Updates != nil {
			updatedRange = resp.Updates.UpdatedRange
		}
		return nil
	}, retryOpts)
	if err != nil {
		if errors.Is(err, ErrAppendUnconfirmed) {
			w.logger.Warn("append outcome unknown, check the sheet for the row before retrying",
				"spreadsheet_id", w.config.SpreadsheetID,
				"expense_id", expense.ID,
				"error", err)
		}
		return fmt.Errorf("failed to append expense %s: %w", expense.ID, err)
	}

	w.logger.Debug("appended expense row",
		"spreadsheet_id", w.config.SpreadsheetID,
		"expense_id", expense.ID,
		"updated_range", updatedRange)

	return nil
}

// classifyError marks rate limits and server errors as retryable. Appends are
// not idempotent, so a failure with no API answer (transport error or call
// timeout) is reported as ErrAppendUnconfirmed and not retried.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, err), Retryable: true}
		case apiErr.Code >= http.StatusInternalServerError:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return &common.RetryableError{Err: err, Retryable: false}
		}
	}

	return &common.RetryableError{Err: fmt.Errorf("%w: %w", ErrAppendUnconfirmed, err), Retryable: false}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
