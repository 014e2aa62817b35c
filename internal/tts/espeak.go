package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Speed     int // Speech speed in words per minute (default: 140)
	Pitch     int // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int // Gap between words in 10ms units (default: 0)
}

// DefaultESpeakConfig returns the default espeak-ng settings
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak provides an interface to the espeak-ng text-to-speech engine
type ESpeak struct {
	config *ESpeakConfig
}

// NewESpeak creates a new ESpeak instance with the given configuration
func NewESpeak(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	defaults := DefaultESpeakConfig()
	if config == nil {
		config = defaults
	}
	if config.Speed == 0 {
		config.Speed = defaults.Speed
	}
	if config.Pitch == 0 {
		config.Pitch = defaults.Pitch
	}
	if config.Amplitude == 0 {
		config.Amplitude = defaults.Amplitude
	}

	return &ESpeak{config: config}, nil
}

// WriteWAV speaks text with an espeak-ng voice into a WAV file
func (e *ESpeak) WriteWAV(ctx context.Context, text, voice, outputFile string) error {
	if text == "" {
		return ErrEmptyText
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, "espeak-ng", e.args(text, voice, outputFile)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

func (e *ESpeak) args(text, voice, outputFile string) []string {
	args := []string{
		"-v", voice,
		"-s", fmt.Sprintf("%d", e.config.Speed),
		"-p", fmt.Sprintf("%d", e.config.Pitch),
		"-a", fmt.Sprintf("%d", e.config.Amplitude),
	}
	if e.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", e.config.WordGap))
	}
	return append(args, "-w", outputFile, text)
}

// SetSpeed updates the speech speed
func (e *ESpeak) SetSpeed(speed int) {
	if speed < 80 {
		speed = 80
	} else if speed > 450 {
		speed = 450
	}
	e.config.Speed = speed
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// espeakVoice maps a voice to an espeak-ng voice name. Google style names
// use their language ("ja-JP-Standard-A" becomes "ja"), English keeps its
// region ("en-us", "en-gb"), anything else is passed through.
func espeakVoice(voice Voice) string {
	lang := voice.Language()
	if lang == "" {
		if voice.Name == "" {
			return "en"
		}
		return voice.Name
	}
	if lang == "en" {
		return strings.ToLower(voice.LanguageCode)
	}
	return lang
}
