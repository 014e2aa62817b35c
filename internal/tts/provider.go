package tts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhandary/JLPT/internal/audio"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// Synthesize speaks text with the given voice and returns the PCM audio
	Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for speech providers
type Config struct {
	Provider   string // "google", "openai", "gemini" or "espeak"
	Fallback   string // optional provider used when the primary fails
	SampleRate int    // requested output rate where the backend supports it

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // used when the run's voice is not an OpenAI voice
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // voice instructions for gpt-4o-mini-tts

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string
	GeminiVoice string // prebuilt voice used when the run's voice is not a Gemini voice

	// espeak-ng settings
	ESpeakSpeed int

	// Cache
	EnableCache bool
	CacheDir    string

	// Resilience
	Retries         uint
	RetryInterval   time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "google",
		SampleRate:        audio.Canonical.SampleRate,
		OpenAIModel:       "tts-1-hd",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "Speak slowly and clearly for language learners.",
		GeminiModel:       "gemini-2.5-flash-preview-tts",
		GeminiVoice:       "Kore",
		ESpeakSpeed:       140,
		CacheDir:          ".tts_cache",
		Retries:           3,
		RetryInterval:     500 * time.Millisecond,
		BreakerFailures:   5,
		BreakerTimeout:    30 * time.Second,
	}
}

// NewProvider creates the provider chain described by config: the named
// backend with retries and circuit breaking, an optional fallback, and an
// optional cache in front of everything
func NewProvider(ctx context.Context, config *Config, log zerolog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newBackend(ctx, config.Provider, config)
	if err != nil {
		return nil, err
	}

	var fallback Provider
	if config.Fallback != "" && config.Fallback != config.Provider {
		fallback, err = newBackend(ctx, config.Fallback, config)
		if err != nil {
			log.Warn().Err(err).Str("fallback", config.Fallback).Msg("fallback provider unavailable, continuing without it")
			fallback = nil
		}
	}

	return buildChain(config, primary, fallback, log)
}

// buildChain wraps the backends. Each backend gets its own cache below the
// fallback so a clip is always stored under the backend that produced it.
func buildChain(config *Config, primary, fallback Provider, log zerolog.Logger) (Provider, error) {
	provider, err := withCache(config, config.Provider, NewResilientProvider(primary, RetryPolicyFromConfig(config), log), log)
	if err != nil {
		return nil, err
	}
	if fallback == nil {
		return provider, nil
	}

	fallback, err = withCache(config, config.Fallback, fallback, log)
	if err != nil {
		return nil, err
	}
	return NewProviderWithFallback(provider, fallback, log), nil
}

func withCache(config *Config, backend string, provider Provider, log zerolog.Logger) (Provider, error) {
	if !config.EnableCache {
		return provider, nil
	}
	cache, err := NewCachingProvider(provider, config.CacheDir, log)
	if err != nil {
		return nil, err
	}
	cache.settings = backendSettings(backend, config)
	return cache, nil
}

// backendSettings lists the config values that change what a backend
// returns for the same text and voice
func backendSettings(backend string, config *Config) string {
	switch backend {
	case "openai":
		return fmt.Sprintf("%s|%s|%g|%s", config.OpenAIModel, config.OpenAIVoice, config.OpenAISpeed, config.OpenAIInstruction)
	case "gemini":
		return fmt.Sprintf("%s|%s", config.GeminiModel, config.GeminiVoice)
	case "espeak":
		return fmt.Sprintf("%d", config.ESpeakSpeed)
	default:
		return fmt.Sprintf("%d", config.SampleRate)
	}
}

func newBackend(ctx context.Context, name string, config *Config) (Provider, error) {
	switch name {
	case "google", "":
		return NewGoogleProvider(ctx, config)

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(ctx, config)

	case "espeak":
		return NewESpeakProvider(&ESpeakConfig{Speed: config.ESpeakSpeed})

	default:
		return nil, fmt.Errorf("unknown speech provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      zerolog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, log zerolog.Logger) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Synthesize tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	clip, err := p.primary.Synthesize(ctx, text, voice)
	if err == nil {
		return clip, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	p.log.Warn().Err(err).
		Str("primary", p.primary.Name()).
		Str("fallback", p.fallback.Name()).
		Msg("primary speech provider failed, falling back")

	return p.fallback.Synthesize(ctx, text, voice)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
