package tts

import (
	"errors"
	"fmt"
)

// SynthesisError reports a failed request to a speech backend
type SynthesisError struct {
	Provider string
	Voice    Voice
	Text     string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s: failed to synthesize %q with voice %s: %v", e.Provider, e.Text, e.Voice.Name, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// newSynthesisError wraps err unless it already is a SynthesisError
func newSynthesisError(provider string, voice Voice, text string, err error) error {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return err
	}
	return &SynthesisError{Provider: provider, Voice: voice, Text: text, Err: err}
}
