package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abhandary/JLPT/internal/audio"
	"github.com/abhandary/JLPT/internal/media"
	"github.com/abhandary/JLPT/internal/tts"
)

// framesPerRune keeps synthesized durations whole milliseconds
const framesPerRune = 240

type fakeSynth struct {
	mu     sync.Mutex
	calls  []string
	voices []tts.Voice
	failOn map[string]error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice tts.Voice) (*audio.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	f.voices = append(f.voices, voice)
	if err := f.failOn[text]; err != nil {
		return nil, &tts.SynthesisError{Provider: "fake", Voice: voice, Text: text, Err: err}
	}
	return tone(len([]rune(text)) * framesPerRune), nil
}

func tone(frames int) *audio.Clip {
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = 500
	}
	return &audio.Clip{Format: audio.Canonical, Samples: samples}
}

func spoken(text string) time.Duration {
	return audio.FramesToDuration(len([]rune(text))*framesPerRune, audio.Canonical.SampleRate)
}

type fakeRenderer struct {
	specs []media.SegmentSpec
	err   error
}

func (f *fakeRenderer) RenderSegment(ctx context.Context, spec media.SegmentSpec) error {
	if f.err != nil {
		return f.err
	}
	if _, err := os.Stat(spec.AudioPath); err != nil {
		return err
	}
	f.specs = append(f.specs, spec)
	return os.WriteFile(spec.OutputPath, []byte(spec.Caption), 0644)
}

type fakeConcat struct {
	segments []string
	output   string
	err      error
}

func (f *fakeConcat) Concatenate(ctx context.Context, segments []string, output string) (string, error) {
	f.segments = append([]string(nil), segments...)
	f.output = output
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(output, []byte("video"), 0644); err != nil {
		return "", err
	}
	return output, nil
}

type fakeEncoder struct {
	inputs []string
	err    error
}

func (f *fakeEncoder) EncodeAAC(ctx context.Context, wavPath, outputPath string) error {
	f.inputs = append(f.inputs, wavPath)
	if f.err != nil {
		return f.err
	}
	if _, err := os.Stat(wavPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("aac"), 0644)
}

type fakeVerifier struct {
	want time.Duration
}

func (f *fakeVerifier) VerifyDuration(ctx context.Context, path string, want, tolerance time.Duration) (time.Duration, bool, error) {
	f.want = want
	return want, true, nil
}

var errBoom = errors.New("boom")
