package tts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastPolicy(tries uint) RetryPolicy {
	return RetryPolicy{
		MaxTries:        tries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		BreakerFailures: 100,
		BreakerTimeout:  time.Minute,
	}
}

func TestResilientProviderRetries(t *testing.T) {
	transient := errors.New("503 service unavailable")
	mock := &mockProvider{name: "google", errs: []error{transient, transient}}
	p := NewResilientProvider(mock, fastPolicy(3), zerolog.Nop())

	clip, err := p.Synthesize(context.Background(), "いち", ParseVoice("ja-JP-Standard-A"))
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}
	if clip == nil {
		t.Fatal("Synthesize() returned nil clip")
	}
	if len(mock.calls) != 3 {
		t.Errorf("provider called %d times, want 3", len(mock.calls))
	}
}

func TestResilientProviderGivesUp(t *testing.T) {
	transient := errors.New("503 service unavailable")
	mock := &mockProvider{name: "google", errs: []error{transient, transient, transient, transient}}
	p := NewResilientProvider(mock, fastPolicy(2), zerolog.Nop())

	_, err := p.Synthesize(context.Background(), "いち", ParseVoice("ja-JP-Standard-A"))

	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("Synthesize() error = %v, want *SynthesisError", err)
	}
	if !errors.Is(err, transient) {
		t.Errorf("Synthesize() error = %v, want it to wrap the backend error", err)
	}
	if synthErr.Text != "いち" {
		t.Errorf("SynthesisError.Text = %q, want %q", synthErr.Text, "いち")
	}
	if len(mock.calls) != 2 {
		t.Errorf("provider called %d times, want 2", len(mock.calls))
	}
}

func TestResilientProviderEmptyText(t *testing.T) {
	mock := &mockProvider{name: "google"}
	p := NewResilientProvider(mock, fastPolicy(5), zerolog.Nop())

	_, err := p.Synthesize(context.Background(), "  ", Voice{Name: "en-US-News-K"})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Synthesize() error = %v, want ErrEmptyText", err)
	}
	if len(mock.calls) != 0 {
		t.Errorf("provider called %d times for empty text, want 0", len(mock.calls))
	}
}

func TestResilientProviderPermanentError(t *testing.T) {
	mock := &mockProvider{name: "google", errs: []error{context.DeadlineExceeded}}
	p := NewResilientProvider(mock, fastPolicy(5), zerolog.Nop())

	_, err := p.Synthesize(context.Background(), "eins", ParseVoice("de-DE-Standard-A"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Synthesize() error = %v, want DeadlineExceeded", err)
	}
	if len(mock.calls) != 1 {
		t.Errorf("provider called %d times, want 1", len(mock.calls))
	}
}

func TestResilientProviderBreakerOpens(t *testing.T) {
	failure := errors.New("connection refused")
	errs := make([]error, 10)
	for i := range errs {
		errs[i] = failure
	}
	mock := &mockProvider{name: "google", errs: errs}

	policy := fastPolicy(1)
	policy.BreakerFailures = 2
	p := NewResilientProvider(mock, policy, zerolog.Nop())
	voice := ParseVoice("en-US-News-K")

	for i := 0; i < 2; i++ {
		if _, err := p.Synthesize(context.Background(), "one", voice); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}

	calls := len(mock.calls)
	_, err := p.Synthesize(context.Background(), "two", voice)
	if err == nil {
		t.Fatal("Synthesize() with an open breaker should fail")
	}
	if len(mock.calls) != calls {
		t.Errorf("open breaker still called the provider")
	}
}
