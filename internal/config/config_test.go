package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the fallback variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"GOOGLE_SHEETS_ID", "GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
	} {
		t.Setenv(name, "")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.HandlerTimeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, llm.DefaultOpenAIModel, cfg.LLM.Model)
	assert.Equal(t, "A1", cfg.Sheets.Range)
	assert.Equal(t, []string{BackendSheets}, cfg.Ledger.Backends)
	assert.Equal(t, 24*time.Hour, cfg.Pending.TTL)
	assert.Equal(t, "@every 10m", cfg.Pending.Sweep)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
	assert.Equal(t, 3, cfg.Telegram.Retry.MaxAttempts)
	assert.NotContains(t, cfg.Ledger.SQLitePath, "~")
}

func TestLoad_EnvironmentFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-1")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/keys/sa.json")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.ChatID)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "/keys/sa.json", cfg.Sheets.ServiceAccountPath)

	assert.NoError(t, cfg.ValidateServe())
}

func TestLoad_TrimsChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", " 42 \n")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_SHEETS_ID", "sheet-1")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/keys/sa.json")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "42", cfg.ChatID)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoad_ViperTakesPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("GOOGLE_SHEETS_ID", "env-sheet")

	v := newViper()
	v.Set("telegram.bot_token", "from-config")
	v.Set("sheets.spreadsheet_id", "config-sheet")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.Telegram.BotToken)
	assert.Equal(t, "config-sheet", cfg.Sheets.SpreadsheetID)
}

func TestLoadLLMConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	tests := []struct {
		wantErr   error
		name      string
		provider  string
		wantModel string
		wantKey   string
	}{
		{name: "anthropic from config", provider: "Anthropic", wantModel: llm.DefaultAnthropicModel, wantKey: "a-key"},
		{name: "gemini from env", provider: "gemini", wantModel: llm.DefaultGeminiModel, wantKey: "g-key"},
		{name: "unknown provider", provider: "llama", wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set("llm.provider", tt.provider)
			v.Set("llm.anthropic_api_key", "a-key")

			cfg, err := LoadLLMConfig(v)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, cfg.Model)
			assert.Equal(t, tt.wantKey, cfg.APIKey)
			assert.NoError(t, ValidateLLM(cfg))
		})
	}
}

func TestValidateServe(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Telegram: loadTelegramConfig(newViper()),
			LLM:      llm.Config{Provider: "openai", APIKey: "k"},
			Ledger:   LedgerConfig{Backends: []string{BackendSQLite}, SQLitePath: "/tmp/ledger.db"},
			Pending:  PendingConfig{TTL: time.Hour},
			ChatID:   "42",
		}
	}

	tests := []struct {
		mutate  func(c *Config)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing bot token", mutate: func(c *Config) { c.Telegram.BotToken = "" }, wantErr: common.ErrMissingConfig},
		{name: "missing chat id", mutate: func(c *Config) { c.ChatID = "" }, wantErr: common.ErrMissingConfig},
		{name: "channel name chat id", mutate: func(c *Config) { c.ChatID = "@spending" }, wantErr: common.ErrInvalidConfig},
		{name: "group chat id", mutate: func(c *Config) { c.ChatID = "-1001234567890" }},
		{name: "missing llm key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: common.ErrMissingConfig},
		{name: "negative ttl", mutate: func(c *Config) { c.Pending.TTL = -time.Second }, wantErr: common.ErrInvalidConfig},
		{name: "no backends", mutate: func(c *Config) { c.Ledger.Backends = nil }, wantErr: common.ErrMissingConfig},
		{name: "unknown backend", mutate: func(c *Config) { c.Ledger.Backends = []string{"postgres"} }, wantErr: common.ErrInvalidConfig},
		{name: "sheets without id", mutate: func(c *Config) { c.Ledger.Backends = []string{BackendSheets} }, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			cfg.Telegram.BotToken = "123:abc"
			cfg.Server.Addr = ":8000"
			tt.mutate(cfg)

			err := cfg.ValidateServe()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeBackends(t *testing.T) {
	assert.Equal(t, []string{"sheets", "sqlite"}, normalizeBackends([]string{"Sheets, sqlite"}))
	assert.Equal(t, []string{"sqlite"}, normalizeBackends([]string{"", " sqlite "}))
	assert.Nil(t, normalizeBackends(nil))
}

func TestLedgerConfig_Uses(t *testing.T) {
	cfg := LedgerConfig{Backends: []string{BackendSQLite}}
	assert.True(t, cfg.Uses(BackendSQLite))
	assert.False(t, cfg.Uses(BackendSheets))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPICE_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/ledger.db", want: filepath.Join(home, "ledger.db")},
		{in: "$SPICE_TEST_DIR/ledger.db", want: "/data/ledger.db"},
		{in: "/abs/~/path", want: "/abs/~/path"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}
