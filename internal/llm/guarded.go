package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-relay/internal/common"
	"github.com/Veraticus/spice-relay/internal/service"
)

// GuardedClient wraps a provider client with rate limiting, a per-call
// timeout and retries for transient failures.
type GuardedClient struct {
	inner     Client
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
	timeout   time.Duration
}

// NewGuardedClient wraps inner using the limits in cfg.
func NewGuardedClient(inner Client, cfg Config, logger *slog.Logger) *GuardedClient {
	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &GuardedClient{
		inner:     inner,
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
		timeout:   cfg.timeout(),
	}
}

// Complete implements Client.
func (c *GuardedClient) Complete(ctx context.Context, req Request) (string, error) {
	var text string
	err := common.WithRetry(ctx, func() error {
		if err := c.limiter.wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		out, err := c.inner.Complete(callCtx, req)
		if err != nil {
			return err
		}

		c.logger.Debug("llm completion",
			"model", req.Model,
			"duration", time.Since(start),
			"chars", len(out))
		text = out
		return nil
	}, c.retryOpts)

	return text, err
}

// Close releases the limiter's background goroutine.
func (c *GuardedClient) Close() error {
	c.limiter.Close()
	return nil
}
