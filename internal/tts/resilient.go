package tts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/abhandary/JLPT/internal/audio"
)

// RetryPolicy controls how transient backend failures are retried
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerTimeout  time.Duration // how long the breaker stays open
}

// RetryPolicyFromConfig extracts the retry settings of a provider config
func RetryPolicyFromConfig(config *Config) RetryPolicy {
	return RetryPolicy{
		MaxTries:        config.Retries,
		InitialInterval: config.RetryInterval,
		MaxInterval:     10 * config.RetryInterval,
		BreakerFailures: config.BreakerFailures,
		BreakerTimeout:  config.BreakerTimeout,
	}
}

// ResilientProvider retries failed requests with exponential backoff and
// stops calling a backend that keeps failing
type ResilientProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	policy   RetryPolicy
	log      zerolog.Logger
}

// NewResilientProvider wraps provider with retries and a circuit breaker
func NewResilientProvider(provider Provider, policy RetryPolicy, log zerolog.Logger) *ResilientProvider {
	if policy.MaxTries == 0 {
		policy.MaxTries = 1
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 500 * time.Millisecond
	}
	if policy.MaxInterval < policy.InitialInterval {
		policy.MaxInterval = policy.InitialInterval
	}
	if policy.BreakerFailures == 0 {
		policy.BreakerFailures = 5
	}
	if policy.BreakerTimeout <= 0 {
		policy.BreakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     policy.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= policy.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// invalid input says nothing about the backend's health
			return err == nil || errors.Is(err, ErrEmptyText) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).
				Msg("speech provider circuit breaker changed state")
		},
	})

	return &ResilientProvider{
		provider: provider,
		breaker:  breaker,
		policy:   policy,
		log:      log,
	}
}

// Synthesize calls the wrapped provider until it succeeds, the error is
// permanent, or the retry budget is spent
func (p *ResilientProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.policy.InitialInterval
	b.MaxInterval = p.policy.MaxInterval

	attempt := 0
	clip, err := backoff.Retry(ctx, func() (*audio.Clip, error) {
		attempt++
		result, err := p.breaker.Execute(func() (interface{}, error) {
			return p.provider.Synthesize(ctx, text, voice)
		})
		if err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return result.(*audio.Clip), nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.policy.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.log.Warn().Err(err).
				Str("provider", p.provider.Name()).
				Str("text", text).
				Int("attempt", attempt).
				Dur("retry_in", next).
				Msg("speech synthesis failed, retrying")
		}),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%s backend disabled after repeated failures: %w", p.provider.Name(), err)
		}
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	return clip, nil
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyText),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return false
	}
	return true
}

// Name returns the wrapped provider name
func (p *ResilientProvider) Name() string {
	return p.provider.Name()
}

// IsAvailable delegates to the wrapped provider
func (p *ResilientProvider) IsAvailable() error {
	return p.provider.IsAvailable()
}
