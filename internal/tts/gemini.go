package tts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/abhandary/JLPT/internal/audio"
)

var geminiVoices = map[string]bool{
	"Zephyr": true, "Puck": true, "Charon": true, "Kore": true, "Fenrir": true,
	"Leda": true, "Orus": true, "Aoede": true, "Callirrhoe": true, "Autonoe": true,
	"Enceladus": true, "Iapetus": true, "Umbriel": true, "Algieba": true, "Despina": true,
	"Erinome": true, "Algenib": true, "Rasalgethi": true, "Laomedeia": true, "Achernar": true,
	"Alnilam": true, "Schedar": true, "Gacrux": true, "Pulcherrima": true, "Achird": true,
	"Zubenelgenubi": true, "Vindemiatrix": true, "Sadachbia": true, "Sadaltager": true, "Sulafat": true,
}

// geminiPCMFormat is the default for inline audio parts without a rate parameter
var geminiPCMFormat = audio.Format{SampleRate: 24000, Channels: 1, SampleWidth: 2}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements Provider using Gemini's speech generation models
type GeminiProvider struct {
	models contentGenerator
	config *Config
}

// NewGeminiProvider creates a Gemini TTS provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{models: client.Models, config: config}, nil
}

// Synthesize asks the model for an audio-only response
func (p *GeminiProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: p.voiceFor(voice)},
			},
		},
	}

	resp, err := p.models.GenerateContent(ctx, p.config.GeminiModel, genai.Text(strings.TrimSpace(text)), cfg)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	blob := inlineAudio(resp)
	if blob == nil || len(blob.Data) == 0 {
		return nil, newSynthesisError(p.Name(), voice, text, fmt.Errorf("no audio data received from Gemini"))
	}

	format := geminiPCMFormat
	if rate := mimeRate(blob.MIMEType); rate > 0 {
		format.SampleRate = rate
	}

	data := blob.Data[:len(blob.Data)-len(blob.Data)%format.SampleWidth]
	clip, err := audio.FromPCM(data, format)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	return clip, nil
}

func inlineAudio(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

// mimeRate extracts the rate parameter from e.g. "audio/L16;codec=pcm;rate=24000"
func mimeRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(key, "rate") {
			if rate, err := strconv.Atoi(value); err == nil {
				return rate
			}
		}
	}
	return 0
}

func (p *GeminiProvider) voiceFor(voice Voice) string {
	if geminiVoices[voice.Name] {
		return voice.Name
	}
	if p.config.GeminiVoice != "" {
		return p.config.GeminiVoice
	}
	return "Kore"
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that an API key is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
