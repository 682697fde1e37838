// Package config loads relay settings from viper, falling back to the
// environment variable names used by earlier deployments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/Veraticus/spice-relay/internal/server"
	"github.com/Veraticus/spice-relay/internal/service"
	"github.com/Veraticus/spice-relay/internal/sheets"
	"github.com/Veraticus/spice-relay/internal/telegram"
	"github.com/spf13/viper"
)

// Ledger backend names.
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
)

// Config is the complete relay configuration.
type Config struct {
	LLM      llm.Config
	Telegram telegram.Config
	Sheets   sheets.Config
	Server   server.Config
	Ledger   LedgerConfig
	Pending  PendingConfig
	// ChatID is the Telegram chat that notifications are forwarded to.
	ChatID string
}

// LedgerConfig selects where expenses are written.
type LedgerConfig struct {
	SQLitePath string
	Backends   []string
}

// Uses reports whether backend is enabled.
func (c LedgerConfig) Uses(backend string) bool {
	for _, b := range c.Backends {
		if b == backend {
			return true
		}
	}
	return false
}

// PendingConfig controls how long unanswered transactions are kept.
type PendingConfig struct {
	Sweep string
	TTL   time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.handler_timeout", 2*time.Minute)

	v.SetDefault("telegram.api_url", telegram.DefaultAPIURL)
	v.SetDefault("telegram.timeout", 30*time.Second)
	v.SetDefault("telegram.retry_attempts", 3)
	v.SetDefault("telegram.retry_delay", time.Second)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.max_tokens", 256)

	v.SetDefault("sheets.range", sheets.DefaultRange)
	v.SetDefault("sheets.retry_attempts", 3)
	v.SetDefault("sheets.retry_delay", time.Second)
	v.SetDefault("sheets.timeout", 30*time.Second)

	v.SetDefault("ledger.backends", []string{BackendSheets})
	v.SetDefault("ledger.sqlite_path", "~/.local/share/spice-relay/ledger.db")

	v.SetDefault("pending.ttl", 24*time.Hour)
	v.SetDefault("pending.sweep", "@every 10m")
}

// Load reads every section from v. It does not validate; callers check the
// sections they need.
func Load(v *viper.Viper) (*Config, error) {
	llmCfg, err := LoadLLMConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LLM:      llmCfg,
		Telegram: loadTelegramConfig(v),
		Sheets:   LoadSheetsConfig(v),
		Server: server.Config{
			Addr:           v.GetString("server.addr"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			HandlerTimeout: v.GetDuration("server.handler_timeout"),
		},
		Ledger: LedgerConfig{
			Backends:   normalizeBackends(v.GetStringSlice("ledger.backends")),
			SQLitePath: ExpandPath(v.GetString("ledger.sqlite_path")),
		},
		Pending: PendingConfig{
			TTL:   v.GetDuration("pending.ttl"),
			Sweep: v.GetString("pending.sweep"),
		},
		ChatID: lookup(v, "telegram.chat_id", "TELEGRAM_CHAT_ID"),
	}

	return cfg, nil
}

// ValidateServe checks everything the serve command needs.
func (c *Config) ValidateServe() error {
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if c.ChatID == "" {
		return fmt.Errorf("%w: telegram.chat_id (or TELEGRAM_CHAT_ID)", common.ErrMissingConfig)
	}
	// Replies are keyed by numeric chat id, so @channel names never match.
	if _, err := strconv.ParseInt(c.ChatID, 10, 64); err != nil {
		return fmt.Errorf("%w: telegram.chat_id %q must be a numeric chat id", common.ErrInvalidConfig, c.ChatID)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr", common.ErrMissingConfig)
	}
	if c.Pending.TTL < 0 {
		return fmt.Errorf("%w: pending.ttl cannot be negative", common.ErrInvalidConfig)
	}
	if err := c.ValidateLedger(); err != nil {
		return err
	}
	return ValidateLLM(c.LLM)
}

// ValidateLedger checks the selected ledger backends.
func (c *Config) ValidateLedger() error {
	if len(c.Ledger.Backends) == 0 {
		return fmt.Errorf("%w: ledger.backends", common.ErrMissingConfig)
	}
	for _, b := range c.Ledger.Backends {
		switch b {
		case BackendSheets:
			if err := c.Sheets.Validate(); err != nil {
				return fmt.Errorf("sheets ledger: %w", err)
			}
		case BackendSQLite:
			if c.Ledger.SQLitePath == "" {
				return fmt.Errorf("%w: ledger.sqlite_path", common.ErrMissingConfig)
			}
		default:
			return fmt.Errorf("%w: unknown ledger backend %q", common.ErrInvalidConfig, b)
		}
	}
	return nil
}

// ValidateLLM checks that the provider is known and has a key.
func ValidateLLM(cfg llm.Config) error {
	switch cfg.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: %s API key (llm.%s_api_key or %s)",
			common.ErrMissingConfig, cfg.Provider, cfg.Provider, apiKeyEnv[cfg.Provider])
	}
	return nil
}

var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// LoadLLMConfig reads the llm section and picks the provider's API key.
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("llm.provider")))
	if provider == "" {
		provider = "openai"
	}

	cfg := llm.Config{
		Provider:   provider,
		Model:      v.GetString("llm.model"),
		BaseURL:    v.GetString("llm.base_url"),
		MaxRetries: v.GetInt("llm.max_retries"),
		RetryDelay: v.GetDuration("llm.retry_delay"),
		Timeout:    v.GetDuration("llm.timeout"),
		RateLimit:  v.GetInt("llm.rate_limit"),
		MaxTokens:  v.GetInt("llm.max_tokens"),
	}

	envName, ok := apiKeyEnv[provider]
	if !ok {
		return cfg, fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, provider)
	}
	cfg.APIKey = lookup(v, "llm."+provider+"_api_key", envName)

	if cfg.Model == "" {
		switch provider {
		case "anthropic":
			cfg.Model = llm.DefaultAnthropicModel
		case "gemini":
			cfg.Model = llm.DefaultGeminiModel
		default:
			cfg.Model = llm.DefaultOpenAIModel
		}
	}

	return cfg, nil
}

func loadTelegramConfig(v *viper.Viper) telegram.Config {
	return telegram.Config{
		BotToken: lookup(v, "telegram.bot_token", "BOT_TOKEN"),
		APIURL:   v.GetString("telegram.api_url"),
		Timeout:  v.GetDuration("telegram.timeout"),
		Retry: service.RetryOptions{
			MaxAttempts:  v.GetInt("telegram.retry_attempts"),
			InitialDelay: v.GetDuration("telegram.retry_delay"),
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// LoadSheetsConfig loads Google Sheets configuration from viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) sheets.Config {
	cfg := sheets.DefaultConfig()

	cfg.ServiceAccountPath = ExpandPath(lookup(v, "sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.ClientID = lookup(v, "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = lookup(v, "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = lookup(v, "sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.SpreadsheetID = lookup(v, "sheets.spreadsheet_id", "GOOGLE_SHEETS_ID", "GOOGLE_SHEETS_SPREADSHEET_ID")

	if r := v.GetString("sheets.range"); r != "" {
		cfg.Range = r
	}
	if v.IsSet("sheets.retry_attempts") {
		cfg.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}
	if d := v.GetDuration("sheets.retry_delay"); d > 0 {
		cfg.RetryDelay = d
	}
	if d := v.GetDuration("sheets.timeout"); d > 0 {
		cfg.Timeout = d
	}

	return cfg
}

// lookup returns the trimmed viper value for key, or the first non-empty env
// var.
func lookup(v *viper.Viper, key string, envVars ...string) string {
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	for _, name := range envVars {
		if s := strings.TrimSpace(os.Getenv(name)); s != "" {
			return s
		}
	}
	return ""
}

func normalizeBackends(in []string) []string {
	var out []string
	for _, raw := range in {
		// Env values arrive as one comma-separated string.
		for _, b := range strings.Split(raw, ",") {
			if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
