package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"go-llamaclick/pkg/logger"
	"go-llamaclick/pkg/metrics"
	"go-llamaclick/pkg/tracer"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second

	defaultMaxRetryDelay   = 30 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	defaultBreakerInterval = 60 * time.Second
)

// ResilienceConfig tunes the per-call timeout and the retry policy. Zero
// values fall back to the defaults above.
type ResilienceConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c ResilienceConfig) withDefaults() ResilienceConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

var _ Provider = (*ResilientProvider)(nil)

// ResilientProvider bounds every call with a timeout, retries transient
// failures with exponential backoff and fails fast through a circuit breaker
// once the backend keeps failing.
type ResilientProvider struct {
	inner   Provider
	cfg     ResilienceConfig
	breaker *gobreaker.CircuitBreaker[*Response]
}

func NewResilientProvider(inner Provider, cfg ResilienceConfig) *ResilientProvider {
	cfg = cfg.withDefaults()
	name := inner.ProviderName()
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "llm:" + name,
		MaxRequests: 1,
		Interval:    defaultBreakerInterval,
		Timeout:     defaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultBreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		// only transient failures count against the backend
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
	})
	return &ResilientProvider{inner: inner, cfg: cfg, breaker: cb}
}

func (p *ResilientProvider) GenerateResponse(ctx context.Context, system, prompt string, temperature float64) (*Response, error) {
	name := p.inner.ProviderName()
	l := log.With().Str(logger.ProviderField, name).Str(logger.ModelField, p.inner.ModelName()).Logger()

	attempt := 0
	var lastErr error
	op := func() (*Response, error) {
		attempt++
		if attempt > 1 {
			metrics.IncProviderRetry(name)
		}
		sctx, span := tracer.StartSpan(ctx, "llm.attempt",
			tracer.String("llm.provider", name),
			tracer.Int("llm.attempt", attempt),
		)
		resp, err := p.breaker.Execute(func() (*Response, error) {
			actx, cancel := context.WithTimeout(sctx, p.cfg.Timeout)
			defer cancel()
			return p.inner.GenerateResponse(actx, system, prompt, temperature)
		})
		tracer.End(span, err)
		switch {
		case err == nil:
			return resp, nil
		case isCircuitOpen(err):
			if lastErr != nil {
				return nil, backoff.Permanent(fmt.Errorf("%w: provider %q circuit open: %w; last error: %w", ErrLLM, name, err, lastErr))
			}
			return nil, backoff.Permanent(fmt.Errorf("%w: provider %q circuit open: %w", ErrLLM, name, err))
		case ctx.Err() != nil, !IsRetryable(err):
			return nil, backoff.Permanent(err)
		}
		lastErr = err
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.RetryDelay
	b.Multiplier = 2
	b.MaxInterval = defaultMaxRetryDelay

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.cfg.RetryAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			l.Warn().Err(err).Int(logger.AttemptField, attempt).Dur("backoff", next).Msg("provider call failed, retrying")
		}),
	)
	if err != nil {
		if isCircuitOpen(err) {
			l.Error().Err(err).Int(logger.AttemptField, attempt).Msg("provider circuit open")
			return nil, err
		}
		if IsRetryable(err) {
			l.Error().Err(err).Int(logger.AttemptField, attempt).Msg("provider retries exhausted")
			return nil, fmt.Errorf("%w: %s failed after %d attempts: %w", ErrLLM, name, attempt, err)
		}
		return nil, err
	}
	return resp, nil
}

func isCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (p *ResilientProvider) ModelName() string    { return p.inner.ModelName() }
func (p *ResilientProvider) ProviderName() string { return p.inner.ProviderName() }

// Unwrap returns the adapter behind the resilience layer.
func (p *ResilientProvider) Unwrap() Provider { return p.inner }
