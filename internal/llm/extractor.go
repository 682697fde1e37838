package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-relay/internal/model"
	"github.com/shopspring/decimal"
)

// MaxNotificationLength caps how much notification text is sent to the model.
const MaxNotificationLength = 4096

const extractionSystemPrompt = "You are an expert at extracting structured financial data from bank notifications in multiple languages. Always respond with valid JSON only."

// Extractor reads bank notifications with a language model.
type Extractor struct {
	client Client
	logger *slog.Logger
	model  string
}

// NewExtractor creates an extractor. An empty model uses the client default.
func NewExtractor(client Client, model string, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: client,
		logger: logger,
		model:  model,
	}
}

// extractionPayload is the schema the model is asked to produce.
type extractionPayload struct {
	Amount         *decimal.Decimal `json:"amount"`
	Currency       string           `json:"currency"`
	RawDescription string           `json:"raw_description"`
	IsCreditCard   bool             `json:"is_credit_card"`
}

// Extract asks the model whether notification describes a credit card charge.
// It never returns an error: model failures and unreadable answers are
// logged and reported as NotRecognized.
func (e *Extractor) Extract(ctx context.Context, notification string) model.ExtractionResult {
	notification = truncate(notification, MaxNotificationLength)

	content, err := e.client.Complete(ctx, Request{
		Model: e.model,
		Messages: []Message{
			{Role: RoleSystem, Content: extractionSystemPrompt},
			{Role: RoleUser, Content: buildExtractionPrompt(notification)},
		},
		Temperature: 0,
	})
	if err != nil {
		e.logger.Error("extraction request failed", "error", err)
		return model.NotRecognized{Reason: fmt.Sprintf("extraction request failed: %v", err)}
	}

	result, err := parseExtraction(content)
	if err != nil {
		e.logger.Warn("failed to parse extraction response",
			"error", err,
			"raw", content)
		return model.NotRecognized{Reason: err.Error()}
	}

	if recognized, ok := result.(model.Recognized); ok {
		e.logger.Info("transaction recognized",
			"amount", recognized.Amount.String(),
			"currency", recognized.Currency,
			"merchant", recognized.RawDescription)
	}

	return result
}

// parseExtraction unwraps and validates a model completion.
func parseExtraction(content string) (model.ExtractionResult, error) {
	payload, err := UnwrapJSON(content)
	if err != nil {
		return nil, err
	}

	var parsed extractionPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if !parsed.IsCreditCard {
		return model.NotRecognized{Reason: "not a credit card transaction"}, nil
	}

	if parsed.Amount == nil {
		return nil, errors.New("missing amount")
	}
	if !parsed.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", parsed.Amount.String())
	}

	currency := strings.ToUpper(strings.TrimSpace(parsed.Currency))
	if currency == "" {
		return nil, errors.New("missing currency")
	}

	description := strings.TrimSpace(parsed.RawDescription)
	if description == "" {
		return nil, errors.New("missing raw_description")
	}

	return model.Recognized{
		Amount:         *parsed.Amount,
		Currency:       currency,
		RawDescription: description,
	}, nil
}

func buildExtractionPrompt(notification string) string {
	return fmt.Sprintf(`You process bank notifications written in English or Spanish.

Decide whether the notification below reports a CREDIT CARD purchase and, if it does, extract its details.

Credit card indicators:
- English: "credit card", "purchase", "transaction", "charged"
- Spanish: "tarjeta de crédito", "compra", "transacción", "cargo"

Typical phrasings:
- "Se realizó una compra por X con su Tarjeta de Crédito"
- "Purchase made with Credit Card"
- "Cargo en Tarjeta de Crédito"

Fields:
- is_credit_card: true only for a credit card transaction
- amount: a plain number; digit groups such as "2,349" mean 2349
- currency: ISO code such as CLP, USD or EUR, inferred from context when not stated (CLP for Chile)
- raw_description: the merchant or store name, cleaned up but keeping the essential text

Notification: %q

Respond ONLY with JSON matching this schema:
{
  "is_credit_card": boolean,
  "amount": number,
  "currency": string,
  "raw_description": string
}`, notification)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.ToValidUTF8(s[:limit], "")
}
