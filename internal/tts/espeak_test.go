package tts

import (
	"context"
	"reflect"
	"testing"
)

func TestEspeakVoice(t *testing.T) {
	tests := []struct {
		voice Voice
		want  string
	}{
		{ParseVoice("ja-JP-Standard-A"), "ja"},
		{ParseVoice("de-DE-Standard-A"), "de"},
		{ParseVoice("en-US-News-K"), "en-us"},
		{ParseVoice("en-GB-Standard-F"), "en-gb"},
		{Voice{Name: "fr+f2"}, "fr+f2"},
		{Voice{}, "en"},
	}

	for _, tt := range tests {
		if got := espeakVoice(tt.voice); got != tt.want {
			t.Errorf("espeakVoice(%q) = %q, want %q", tt.voice.Name, got, tt.want)
		}
	}
}

func TestESpeakArgs(t *testing.T) {
	e := &ESpeak{config: &ESpeakConfig{Speed: 140, Pitch: 50, Amplitude: 100, WordGap: 2}}

	got := e.args("Hund", "de", "/tmp/out.wav")
	want := []string{"-v", "de", "-s", "140", "-p", "50", "-a", "100", "-g", "2", "-w", "/tmp/out.wav", "Hund"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %v, want %v", got, want)
	}
}

func TestSetSpeed(t *testing.T) {
	espeak := &ESpeak{config: DefaultESpeakConfig()}

	tests := []struct {
		input    int
		expected int
	}{
		{150, 150},
		{50, 80},
		{500, 450},
		{200, 200},
	}

	for _, tt := range tests {
		espeak.SetSpeed(tt.input)
		if espeak.config.Speed != tt.expected {
			t.Errorf("SetSpeed(%d) resulted in speed %d, expected %d",
				tt.input, espeak.config.Speed, tt.expected)
		}
	}
}

func TestESpeakProviderIntegration(t *testing.T) {
	if checkESpeakInstalled() != nil {
		t.Skip("espeak-ng not installed, skipping integration test")
	}

	p, err := NewESpeakProvider(nil)
	if err != nil {
		t.Fatalf("NewESpeakProvider() failed: %v", err)
	}

	clip, err := p.Synthesize(context.Background(), "hello", ParseVoice("en-US-News-K"))
	if err != nil {
		t.Fatalf("Synthesize() failed: %v", err)
	}
	if clip.Frames() == 0 {
		t.Error("Synthesize() returned an empty clip")
	}

	if _, err := p.Synthesize(context.Background(), "", ParseVoice("en-US-News-K")); err == nil {
		t.Error("Synthesize() with empty text should return error")
	}
}
