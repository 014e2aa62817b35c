package tts

import (
	"context"
	"fmt"
	"sort"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/abhandary/JLPT/internal/audio"
)

// speechAPI is the part of the Cloud Text-to-Speech client the provider uses
type speechAPI interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)
	ListVoices(ctx context.Context, languageCode string) ([]*texttospeechpb.Voice, error)
	Close() error
}

type googleClient struct {
	client *texttospeech.Client
}

func (c *googleClient) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	return c.client.SynthesizeSpeech(ctx, req)
}

func (c *googleClient) ListVoices(ctx context.Context, languageCode string) ([]*texttospeechpb.Voice, error) {
	resp, err := c.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: languageCode})
	if err != nil {
		return nil, err
	}
	return resp.GetVoices(), nil
}

func (c *googleClient) Close() error {
	return c.client.Close()
}

// GoogleProvider implements Provider for Google Cloud Text-to-Speech.
// Credentials come from Application Default Credentials.
type GoogleProvider struct {
	api        speechAPI
	sampleRate int
}

// NewGoogleProvider creates a Cloud Text-to-Speech provider
func NewGoogleProvider(ctx context.Context, config *Config) (*GoogleProvider, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Text-to-Speech client: %w", err)
	}
	return newGoogleProvider(&googleClient{client: client}, config.SampleRate), nil
}

func newGoogleProvider(api speechAPI, sampleRate int) *GoogleProvider {
	if sampleRate <= 0 {
		sampleRate = audio.Canonical.SampleRate
	}
	return &GoogleProvider{api: api, sampleRate: sampleRate}
}

// Synthesize requests LINEAR16 audio, which the service returns as a WAV file
func (p *GoogleProvider) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Clip, error) {
	if err := ValidateText(text); err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: int32(p.sampleRate),
		},
	}

	resp, err := p.api.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, newSynthesisError(p.Name(), voice, text, fmt.Errorf("no audio data received"))
	}

	clip, err := audio.DecodeWAVBytes(resp.GetAudioContent())
	if err != nil {
		return nil, newSynthesisError(p.Name(), voice, text, err)
	}
	return clip, nil
}

// ListVoices returns the voices offered for a language code, or all
// voices when languageCode is empty, sorted by name
func (p *GoogleProvider) ListVoices(ctx context.Context, languageCode string) ([]VoiceInfo, error) {
	voices, err := p.api.ListVoices(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	infos := make([]VoiceInfo, 0, len(voices))
	for _, v := range voices {
		infos = append(infos, VoiceInfo{
			Name:              v.GetName(),
			LanguageCodes:     v.GetLanguageCodes(),
			Gender:            v.GetSsmlGender().String(),
			NaturalSampleRate: int(v.GetNaturalSampleRateHertz()),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Close releases the underlying gRPC connection
func (p *GoogleProvider) Close() error {
	return p.api.Close()
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// IsAvailable reports whether a client could be created
func (p *GoogleProvider) IsAvailable() error {
	if p.api == nil {
		return fmt.Errorf("Text-to-Speech client not initialized")
	}
	return nil
}
