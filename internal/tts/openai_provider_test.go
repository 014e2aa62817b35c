package tts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/abhandary/JLPT/internal/audio"
)

type fakeSpeechCreator struct {
	data     []byte
	err      error
	requests []openai.CreateSpeechRequest
}

func (f *fakeSpeechCreator) CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(f.data))}, nil
}

func TestNewOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"missing API key", &Config{OpenAIKey: ""}, true},
		{"valid config", &Config{OpenAIKey: "test-key"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewOpenAIProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewOpenAIProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && provider.Name() != "openai" {
				t.Errorf("Name() = %v, want %v", provider.Name(), "openai")
			}
		})
	}
}

func TestOpenAIProviderIsAvailable(t *testing.T) {
	if err := (&OpenAIProvider{config: &Config{OpenAIKey: "k"}}).IsAvailable(); err != nil {
		t.Errorf("IsAvailable() with key = %v, want nil", err)
	}
	if err := (&OpenAIProvider{config: &Config{}}).IsAvailable(); err == nil {
		t.Error("IsAvailable() without key should fail")
	}
}

func TestOpenAIProviderSynthesize(t *testing.T) {
	want := &audio.Clip{Format: openAIPCMFormat, Samples: []int{1, -1, 300}}
	// trailing odd byte from a cut-off stream is dropped
	fake := &fakeSpeechCreator{data: append(want.PCM(), 0x7f)}

	config := DefaultProviderConfig()
	config.OpenAIModel = "gpt-4o-mini-tts"
	p := &OpenAIProvider{client: fake, config: config}

	got, err := p.Synthesize(context.Background(), " Hund ", ParseVoice("de-DE-Standard-A"))
	if err != nil {
		t.Fatalf("Synthesize() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Samples, want.Samples) {
		t.Errorf("Synthesize() samples = %v, want %v", got.Samples, want.Samples)
	}

	req := fake.requests[0]
	if req.Input != "Hund" {
		t.Errorf("request input = %q, want %q", req.Input, "Hund")
	}
	if req.Voice != "alloy" {
		t.Errorf("request voice = %q, want the configured OpenAI voice", req.Voice)
	}
	if req.ResponseFormat != "pcm" {
		t.Errorf("request format = %q, want pcm", req.ResponseFormat)
	}
	if !strings.Contains(req.Instructions, "de-DE") {
		t.Errorf("request instructions = %q, want the language code", req.Instructions)
	}
}

func TestOpenAIProviderVoiceFor(t *testing.T) {
	p := &OpenAIProvider{config: &Config{OpenAIVoice: "nova"}}

	tests := []struct {
		voice Voice
		want  string
	}{
		{Voice{Name: "shimmer"}, "shimmer"},
		{Voice{Name: "Echo"}, "echo"},
		{ParseVoice("ja-JP-Standard-A"), "nova"},
	}
	for _, tt := range tests {
		if got := p.voiceFor(tt.voice); got != tt.want {
			t.Errorf("voiceFor(%q) = %q, want %q", tt.voice.Name, got, tt.want)
		}
	}
}

func TestOpenAIProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeSpeechCreator
	}{
		{"api error", &fakeSpeechCreator{err: errors.New("401 unauthorized")}},
		{"empty body", &fakeSpeechCreator{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &OpenAIProvider{client: tt.fake, config: DefaultProviderConfig()}
			_, err := p.Synthesize(context.Background(), "one", Voice{Name: "alloy"})

			var synthErr *SynthesisError
			if !errors.As(err, &synthErr) {
				t.Fatalf("Synthesize() error = %v, want *SynthesisError", err)
			}
		})
	}
}
