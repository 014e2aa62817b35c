package tts

import (
	"context"
	"fmt"
	"os"

	"github.com/abhandary/JLPT/internal/audio"
)

// ESpeakProvider implements Provider interface for espeak-ng.
// It needs no network access and serves as the offline fallback.
type ESpeakProvider struct {
	espeak *ESpeak
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) (*ESpeakProvider, error) {
	espeak, err := NewESpeak(config)
	if err != nil {
		return nil, err
	}
	return &ESpeakProvider{espeak: espeak}, nil
}

// Synthesize renders text to a temporary WAV file and loads it
func (p *ESpeakProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	tmp, err := os.CreateTemp("", "espeak-*.wav")
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := p.espeak.WriteWAV(ctx, text, espeakVoice(voice), tmpPath); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	clip, err := audio.ReadWAVFile(tmpPath)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	return clip, nil
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}
