package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abhandary/JLPT/internal/audio"
	"github.com/abhandary/JLPT/internal/media"
	"github.com/abhandary/JLPT/internal/tts"
)

// Config fixes what a run produces and how it sounds
type Config struct {
	SourceVoice tts.Voice
	TargetVoice tts.Voice
	Silence     time.Duration
	Format      audio.Format // zero value means audio.Canonical
	OutputRoot  string

	AllowTriple   bool // the language profile permits the grapheme/phonetic/gloss layout
	GenerateCSV   bool
	GenerateVideo bool
	GenerateAudio bool
	GenerateAnki  bool
	AnkiCSV       bool
	DeckName      string
	KeepTemp      bool
	Debug         bool
}

// Synthesizer turns text into speech; tts.Provider satisfies it
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice tts.Voice) (*audio.Clip, error)
}

// SegmentRenderer renders one captioned segment
type SegmentRenderer interface {
	RenderSegment(ctx context.Context, spec media.SegmentSpec) error
}

// Concatenator joins segments into the final video
type Concatenator interface {
	Concatenate(ctx context.Context, segments []string, output string) (string, error)
}

// AudioEncoder compresses the audio-only track
type AudioEncoder interface {
	EncodeAAC(ctx context.Context, wavPath, outputPath string) error
}

// DurationVerifier checks a finished file against its expected length
type DurationVerifier interface {
	VerifyDuration(ctx context.Context, path string, want, tolerance time.Duration) (time.Duration, bool, error)
}

// Deps are the collaborators a pipeline drives. Only those needed by the
// enabled outputs must be set.
type Deps struct {
	Synth    Synthesizer
	Renderer SegmentRenderer
	Concat   Concatenator
	Encoder  AudioEncoder
	Verifier DurationVerifier // optional
	Out      io.Writer        // debug echo and progress; defaults to os.Stdout
}

func (c *Config) validate(deps Deps) error {
	if c.Silence < 0 {
		return fmt.Errorf("silence must not be negative, got %v", c.Silence)
	}
	if c.speaks() && deps.Synth == nil {
		return errors.New("a speech synthesizer is required")
	}
	if c.GenerateVideo && (deps.Renderer == nil || deps.Concat == nil) {
		return errors.New("video output needs a segment renderer and a concatenator")
	}
	if c.GenerateAudio && deps.Encoder == nil {
		return errors.New("audio output needs an encoder")
	}
	return nil
}

// speaks reports whether any enabled output needs synthesized audio
func (c *Config) speaks() bool {
	return c.GenerateVideo || c.GenerateAudio || c.GenerateAnki
}

// Layout names every artifact under the output root
type Layout struct {
	Root string
}

// CSV is the projected word list for one projection
func (l Layout) CSV(projection, base string) string {
	return filepath.Join(l.Root, projection+"_csv", base+".csv")
}

// TempRoot holds the per-file work directories
func (l Layout) TempRoot() string {
	return filepath.Join(l.Root, "temp")
}

// Video is the final concatenated video
func (l Layout) Video(base string) string {
	return filepath.Join(l.Root, "video", base+".mp4")
}

// WAV is the continuous audio-only track
func (l Layout) WAV(base string) string {
	return filepath.Join(l.Root, "wav", base+".wav")
}

// AAC is the compressed audio-only track
func (l Layout) AAC(base string) string {
	return filepath.Join(l.Root, "audio", base+".m4a")
}

// Anki is the exported deck, .apkg or legacy .csv
func (l Layout) Anki(base string, legacyCSV bool) string {
	ext := ".apkg"
	if legacyCSV {
		ext = ".csv"
	}
	return filepath.Join(l.Root, "anki", base+ext)
}

func defaultOut(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
