package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig controls the exponential backoff of WithRetry.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type retryingCompleter struct {
	next Completer
	cfg  RetryConfig
	log  *slog.Logger
}

// WithRetry wraps next so that network failures, 429 and 5xx responses
// are retried with exponential backoff. Any other error is returned
// after the first attempt. With MaxRetries <= 0 next is returned as is.
func WithRetry(next Completer, cfg RetryConfig, log *slog.Logger) Completer {
	if cfg.MaxRetries <= 0 {
		return next
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = time.Second
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = cfg.InitialInterval
	}
	return &retryingCompleter{
		next: next,
		cfg:  cfg,
		log:  log.With("component", "llm_retry"),
	}
}

func (r *retryingCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	var reply Reply
	attempt := 0

	op := func() error {
		attempt++
		var err error
		reply, err = r.next.Complete(ctx, req)
		if err != nil && !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxRetries)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		r.log.WarnContext(ctx, "completion failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
	})
	if err != nil {
		return Reply{}, err
	}
	return reply, nil
}
