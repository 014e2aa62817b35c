package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/abhandary/JLPT/internal/audio"
)

// openAIPCMFormat is what the speech endpoint returns for response_format=pcm
var openAIPCMFormat = audio.Format{SampleRate: 24000, Channels: 1, SampleWidth: 2}

var openAIVoices = map[string]bool{
	"alloy": true, "ash": true, "ballad": true, "coral": true, "echo": true,
	"fable": true, "onyx": true, "nova": true, "sage": true, "shimmer": true, "verse": true,
}

type speechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client speechCreator
	config *Config
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
	}, nil
}

// Synthesize generates audio using OpenAI TTS
func (p *OpenAIProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          strings.TrimSpace(text),
		Voice:          openai.SpeechVoice(p.voiceFor(voice)),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormat("pcm"),
	}

	if p.supportsInstructions() {
		req.Instructions = p.instructionFor(voice)
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not have access to model") && p.supportsInstructions() {
			err = fmt.Errorf("%w (the %s model requires access, try tts.openai_model: tts-1-hd)", err, p.config.OpenAIModel)
		}
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	defer response.Close()

	data, err := io.ReadAll(response)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, fmt.Errorf("failed to read audio: %w", err))
	}
	if len(data) == 0 {
		return nil, newSynthesisError(p.Name(), voice, text, fmt.Errorf("no audio data received from OpenAI"))
	}

	// a truncated stream can end mid-sample
	data = data[:len(data)-len(data)%openAIPCMFormat.SampleWidth]

	clip, err := audio.FromPCM(data, openAIPCMFormat)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	return clip, nil
}

// voiceFor maps the run's voice to an OpenAI voice. Names of other
// backends fall back to the configured OpenAI voice.
func (p *OpenAIProvider) voiceFor(voice Voice) string {
	name := strings.ToLower(voice.Name)
	if openAIVoices[name] {
		return name
	}
	if p.config.OpenAIVoice != "" {
		return p.config.OpenAIVoice
	}
	return "alloy"
}

func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview"
}

func (p *OpenAIProvider) instructionFor(voice Voice) string {
	instruction := p.config.OpenAIInstruction
	if voice.LanguageCode != "" {
		instruction = strings.TrimSpace(fmt.Sprintf("The text is in %s. %s", voice.LanguageCode, instruction))
	}
	return instruction
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test request would spend credits, so only the key is checked
	return nil
}
