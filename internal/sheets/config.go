// Package sheets appends categorized expenses to a Google Sheets spreadsheet.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
)

// DefaultRange is the A1 range rows are appended after.
const DefaultRange = "A1"

// Config holds the configuration for the Google Sheets ledger.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	Range              string
	RetryAttempts      int
	RetryDelay         time.Duration
	Timeout            time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Range:         DefaultRange,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
		Timeout:       30 * time.Second,
	}
}

// HasOAuth reports whether the full OAuth2 credential set is present.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}

	hasServiceAccount := c.ServiceAccountPath != ""

	if !c.HasOAuth() && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}

	if c.HasOAuth() && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}

func (c *Config) appendRange() string {
	if c.Range == "" {
		return DefaultRange
	}
	return c.Range
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}
