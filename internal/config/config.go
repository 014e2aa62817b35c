package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhandary/JLPT/internal/media"
	"github.com/abhandary/JLPT/internal/tts"
)

// ErrUnknownLanguage is returned for a source language without a profile
var ErrUnknownLanguage = errors.New("unknown source language")

// Config is the complete run configuration
type Config struct {
	Output         OutputConfig              `mapstructure:"output"`
	SilenceSeconds float64                   `mapstructure:"silence_seconds"`
	KeepTemp       bool                      `mapstructure:"keep_temp"`
	Caption        CaptionConfig             `mapstructure:"caption"`
	TTS            TTSConfig                 `mapstructure:"tts"`
	Media          MediaConfig               `mapstructure:"media"`
	Languages      map[string]LanguageConfig `mapstructure:"languages"`
}

// OutputConfig controls where artifacts are written
type OutputConfig struct {
	Directory string `mapstructure:"directory"`
}

// CaptionConfig controls caption rendering
type CaptionConfig struct {
	Font       string `mapstructure:"font"`
	FontSize   int    `mapstructure:"font_size"`
	Color      string `mapstructure:"color"`
	Background string `mapstructure:"background"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	FPS        int    `mapstructure:"fps"`
}

// TTSConfig selects and tunes the speech provider
type TTSConfig struct {
	Provider          string  `mapstructure:"provider"`
	Fallback          string  `mapstructure:"fallback"`
	SampleRate        int     `mapstructure:"sample_rate"`
	Retries           uint    `mapstructure:"retries"`
	EnableCache       bool    `mapstructure:"enable_cache"`
	CacheDir          string  `mapstructure:"cache_dir"`
	OpenAIKey         string  `mapstructure:"openai_key"`
	OpenAIModel       string  `mapstructure:"openai_model"`
	OpenAIVoice       string  `mapstructure:"openai_voice"`
	OpenAISpeed       float64 `mapstructure:"openai_speed"`
	OpenAIInstruction string  `mapstructure:"openai_instruction"`
	GeminiKey         string  `mapstructure:"gemini_key"`
	GeminiModel       string  `mapstructure:"gemini_model"`
	GeminiVoice       string  `mapstructure:"gemini_voice"`
	ESpeakSpeed       int     `mapstructure:"espeak_speed"`
	BreakerFailures   uint32  `mapstructure:"breaker_failures"`
}

// MediaConfig names the media tool binaries
type MediaConfig struct {
	FFmpeg  string `mapstructure:"ffmpeg"`
	FFprobe string `mapstructure:"ffprobe"`
}

// LanguageConfig is the voice profile for one source language
type LanguageConfig struct {
	SourceVoice string `mapstructure:"source_voice"`
	TargetVoice string `mapstructure:"target_voice"`
	Triple      bool   `mapstructure:"triple"`
}

// SetDefaults registers every default value on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output.directory", ".")
	v.SetDefault("silence_seconds", 1.5)
	v.SetDefault("keep_temp", false)

	style := media.DefaultCaptionStyle()
	v.SetDefault("caption.font", style.Font)
	v.SetDefault("caption.font_size", style.FontSize)
	v.SetDefault("caption.color", style.Color)
	v.SetDefault("caption.background", style.Background)
	v.SetDefault("caption.width", style.Width)
	v.SetDefault("caption.height", style.Height)
	v.SetDefault("caption.fps", style.FPS)

	defaults := tts.DefaultProviderConfig()
	v.SetDefault("tts.provider", defaults.Provider)
	v.SetDefault("tts.sample_rate", defaults.SampleRate)
	v.SetDefault("tts.retries", defaults.Retries)
	v.SetDefault("tts.enable_cache", false)
	v.SetDefault("tts.cache_dir", defaults.CacheDir)
	v.SetDefault("tts.openai_model", defaults.OpenAIModel)
	v.SetDefault("tts.openai_voice", defaults.OpenAIVoice)
	v.SetDefault("tts.openai_speed", defaults.OpenAISpeed)
	v.SetDefault("tts.openai_instruction", defaults.OpenAIInstruction)
	v.SetDefault("tts.gemini_model", defaults.GeminiModel)
	v.SetDefault("tts.gemini_voice", defaults.GeminiVoice)
	v.SetDefault("tts.espeak_speed", defaults.ESpeakSpeed)
	v.SetDefault("tts.breaker_failures", defaults.BreakerFailures)

	v.SetDefault("media.ffmpeg", "ffmpeg")
	v.SetDefault("media.ffprobe", "ffprobe")

	v.SetDefault("languages", map[string]any{
		"jp": map[string]any{
			"source_voice": "ja-JP-Standard-A",
			"target_voice": "en-US-News-K",
			"triple":       true,
		},
		"de": map[string]any{
			"source_voice": "de-DE-Standard-A",
			"target_voice": "en-US-News-K",
			"triple":       false,
		},
	})
}

// Load reads v into a validated Config
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.SilenceSeconds < 0 || math.IsNaN(c.SilenceSeconds) {
		return fmt.Errorf("silence_seconds must not be negative (got: %v)", c.SilenceSeconds)
	}
	if err := c.CaptionStyle().Validate(); err != nil {
		return fmt.Errorf("caption: %w", err)
	}
	if c.TTS.SampleRate <= 0 {
		return fmt.Errorf("tts.sample_rate must be positive (got: %d)", c.TTS.SampleRate)
	}
	if len(c.Languages) == 0 {
		return errors.New("no languages configured")
	}
	for name, lang := range c.Languages {
		if lang.SourceVoice == "" || lang.TargetVoice == "" {
			return fmt.Errorf("languages.%s: source_voice and target_voice are required", name)
		}
	}
	return nil
}

// Silence returns the gap inserted between spoken clips
func (c *Config) Silence() time.Duration {
	return time.Duration(c.SilenceSeconds * float64(time.Second))
}

// Language returns the profile for name
func (c *Config) Language(name string) (LanguageConfig, error) {
	lang, ok := c.Languages[strings.ToLower(name)]
	if !ok {
		return LanguageConfig{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownLanguage, name, strings.Join(c.LanguageNames(), ", "))
	}
	return lang, nil
}

// LanguageNames returns the configured language names, sorted
func (c *Config) LanguageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Voices returns the parsed source and target voices of a language profile
func (l LanguageConfig) Voices() (source, target tts.Voice) {
	return tts.ParseVoice(l.SourceVoice), tts.ParseVoice(l.TargetVoice)
}

// CaptionStyle converts the caption section to a media style
func (c *Config) CaptionStyle() media.CaptionStyle {
	return media.CaptionStyle{
		Font:       c.Caption.Font,
		FontSize:   c.Caption.FontSize,
		Color:      c.Caption.Color,
		Background: c.Caption.Background,
		Width:      c.Caption.Width,
		Height:     c.Caption.Height,
		FPS:        c.Caption.FPS,
	}
}

// ProviderConfig converts the tts section to a provider configuration.
// Keys from the environment take precedence over the config file.
func (c *Config) ProviderConfig(openAIKey, geminiKey string) *tts.Config {
	pc := tts.DefaultProviderConfig()
	pc.Provider = c.TTS.Provider
	pc.Fallback = c.TTS.Fallback
	pc.SampleRate = c.TTS.SampleRate
	pc.Retries = c.TTS.Retries
	pc.EnableCache = c.TTS.EnableCache
	pc.CacheDir = c.TTS.CacheDir
	pc.OpenAIModel = c.TTS.OpenAIModel
	pc.OpenAIVoice = c.TTS.OpenAIVoice
	pc.OpenAISpeed = c.TTS.OpenAISpeed
	pc.OpenAIInstruction = c.TTS.OpenAIInstruction
	pc.GeminiModel = c.TTS.GeminiModel
	pc.GeminiVoice = c.TTS.GeminiVoice
	pc.ESpeakSpeed = c.TTS.ESpeakSpeed
	if c.TTS.BreakerFailures > 0 {
		pc.BreakerFailures = c.TTS.BreakerFailures
	}

	pc.OpenAIKey = c.TTS.OpenAIKey
	if openAIKey != "" {
		pc.OpenAIKey = openAIKey
	}
	pc.GeminiKey = c.TTS.GeminiKey
	if geminiKey != "" {
		pc.GeminiKey = geminiKey
	}
	return pc
}
