// Package telegram talks to the Telegram Bot API: it sends messages to a chat
// and decodes the updates Telegram posts to the webhook.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/service"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Config holds the settings for a Notifier.
type Config struct {
	BotToken string
	APIURL   string
	Timeout  time.Duration
	Retry    service.RetryOptions
}

// Validate checks that the configuration can be used.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("%w: telegram bot token", common.ErrMissingConfig)
	}
	return nil
}

// Notifier sends text messages through the sendMessage method.
type Notifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	retry      service.RetryOptions
}

// NewNotifier creates a notifier for the bot identified by cfg.BotToken.
func NewNotifier(cfg Config, logger *slog.Logger) (*Notifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		endpoint:   fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(apiURL, "/"), cfg.BotToken),
		retry:      cfg.Retry,
	}, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	OK          bool   `json:"ok"`
}

// Send delivers text to chatID. Rate limits, server errors and network
// failures are retried.
func (n *Notifier) Send(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("%w: chat id", common.ErrInvalidConfig)
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = common.WithRetry(ctx, func() error {
		return n.send(ctx, body)
	}, n.retry)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debug("Telegram message sent", "chat_id", chatID, "chars", len(text))
	return nil
}

func (n *Notifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// The error text carries the URL, which carries the token.
		return common.TransportError("telegram", redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return common.HTTPStatusError("telegram", resp.StatusCode, respBody)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram API error %d: %s", parsed.ErrorCode, parsed.Description)
	}
	return nil
}

func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactToken(urlErr.URL)
	}
	return err
}

// redactToken hides the bot token in a sendMessage URL.
func redactToken(s string) string {
	start := strings.Index(s, "/bot")
	if start < 0 {
		return s
	}
	end := strings.Index(s[start:], "/sendMessage")
	if end < 0 {
		return s
	}
	return s[:start] + "/bot<redacted>" + s[start+end:]
}
