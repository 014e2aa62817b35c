package audio

import (
	"fmt"
	"time"
)

// Track is the assembled audio of one word pair
type Track struct {
	Clip     *Clip
	Duration time.Duration
}

// Assembler builds the spoken sequence of a flashcard:
// source word, pause, target word, pause. The pause length is fixed for
// the lifetime of the assembler so every segment of a run is paced alike.
type Assembler struct {
	format  Format
	silence *Clip
}

// NewAssembler creates an assembler producing clips in format with pauses
// of the given length
func NewAssembler(format Format, pause time.Duration) (*Assembler, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if pause < 0 {
		return nil, fmt.Errorf("pause must not be negative, got %s", pause)
	}
	return &Assembler{
		format:  format,
		silence: Silence(format, pause),
	}, nil
}

// Format returns the output format of assembled tracks
func (a *Assembler) Format() Format {
	return a.format
}

// Pause returns the length of one silence gap
func (a *Assembler) Pause() time.Duration {
	return a.silence.Duration()
}

// Assemble returns [pause] source, pause, target, pause. The leading pause is
// only added for the first pair of a video so playback does not start
// mid-word.
func (a *Assembler) Assemble(first bool, source, target *Clip) (*Track, error) {
	src, err := a.prepare(source)
	if err != nil {
		return nil, fmt.Errorf("source clip: %w", err)
	}
	tgt, err := a.prepare(target)
	if err != nil {
		return nil, fmt.Errorf("target clip: %w", err)
	}

	parts := make([]*Clip, 0, 5)
	if first {
		parts = append(parts, a.silence)
	}
	parts = append(parts, src, a.silence, tgt, a.silence)

	clip, err := Concat(parts...)
	if err != nil {
		return nil, err
	}
	return &Track{Clip: clip, Duration: clip.Duration()}, nil
}

func (a *Assembler) prepare(c *Clip) (*Clip, error) {
	if c == nil {
		return nil, fmt.Errorf("missing clip")
	}
	converted, err := Convert(c, a.format)
	if err != nil {
		return nil, err
	}
	return TrimTrailingSilence(converted), nil
}
