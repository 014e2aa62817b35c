package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Format describes interleaved linear PCM
type Format struct {
	SampleRate  int // frames per second
	Channels    int
	SampleWidth int // bytes per sample: 1 (unsigned), 2, 3 or 4 (signed)
}

// Canonical is the format every clip is converted to before assembly
var Canonical = Format{SampleRate: 24000, Channels: 1, SampleWidth: 2}

// BitDepth returns the sample size in bits
func (f Format) BitDepth() int {
	return f.SampleWidth * 8
}

// Validate checks that the format can be processed
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count %d", f.Channels)
	}
	if f.SampleWidth < 1 || f.SampleWidth > 4 {
		return fmt.Errorf("unsupported sample width %d", f.SampleWidth)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth())
}

// zero is the sample value that encodes silence
func (f Format) zero() int {
	if f.SampleWidth == 1 {
		return 128
	}
	return 0
}

// Clip is a block of PCM audio. Samples are interleaved by channel and
// hold the integer value of each sample at the clip's width.
type Clip struct {
	Format  Format
	Samples []int
}

// Frames returns the number of sample frames in the clip
func (c *Clip) Frames() int {
	if c.Format.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Format.Channels
}

// Duration returns the playing time of the clip
func (c *Clip) Duration() time.Duration {
	return FramesToDuration(c.Frames(), c.Format.SampleRate)
}

// FramesToDuration converts a frame count at the given rate into a duration
func FramesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

// Silence returns a clip of digital silence lasting d
func Silence(format Format, d time.Duration) *Clip {
	frames := int((d.Seconds() * float64(format.SampleRate)) + 0.5)
	if frames < 0 {
		frames = 0
	}

	samples := make([]int, frames*format.Channels)
	if z := format.zero(); z != 0 {
		for i := range samples {
			samples[i] = z
		}
	}
	return &Clip{Format: format, Samples: samples}
}

// Concat joins clips end to end. All clips must share one format.
func Concat(clips ...*Clip) (*Clip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to concatenate")
	}

	format := clips[0].Format
	total := 0
	for i, c := range clips {
		if c.Format != format {
			return nil, fmt.Errorf("clip %d has format %s, want %s", i, c.Format, format)
		}
		total += len(c.Samples)
	}

	samples := make([]int, 0, total)
	for _, c := range clips {
		samples = append(samples, c.Samples...)
	}
	return &Clip{Format: format, Samples: samples}, nil
}

// TrimTrailingSilence drops trailing frames whose samples are all silent.
// Synthesized speech often ends in a run of zero samples which would
// otherwise lengthen the gap that follows it.
func TrimTrailingSilence(c *Clip) *Clip {
	channels := c.Format.Channels
	if channels == 0 {
		return c
	}

	z := c.Format.zero()
	end := c.Frames()
	for end > 0 {
		silent := true
		for ch := 0; ch < channels; ch++ {
			if c.Samples[(end-1)*channels+ch] != z {
				silent = false
				break
			}
		}
		if !silent {
			break
		}
		end--
	}

	return &Clip{Format: c.Format, Samples: c.Samples[:end*channels]}
}

// FromPCM decodes raw little-endian PCM bytes
func FromPCM(data []byte, format Format) (*Clip, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	frameSize := format.SampleWidth * format.Channels
	if len(data)%frameSize != 0 {
		return nil, fmt.Errorf("pcm length %d is not a multiple of frame size %d", len(data), frameSize)
	}

	samples := make([]int, len(data)/format.SampleWidth)
	for i := range samples {
		b := data[i*format.SampleWidth : (i+1)*format.SampleWidth]
		switch format.SampleWidth {
		case 1:
			samples[i] = int(b[0])
		case 2:
			samples[i] = int(int16(binary.LittleEndian.Uint16(b)))
		case 3:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xffffff
			}
			samples[i] = int(v)
		case 4:
			samples[i] = int(int32(binary.LittleEndian.Uint32(b)))
		}
	}

	return &Clip{Format: format, Samples: samples}, nil
}

// PCM encodes the clip as raw little-endian bytes
func (c *Clip) PCM() []byte {
	width := c.Format.SampleWidth
	out := make([]byte, len(c.Samples)*width)
	for i, s := range c.Samples {
		b := out[i*width : (i+1)*width]
		switch width {
		case 1:
			b[0] = byte(s)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(int16(s)))
		case 3:
			b[0], b[1], b[2] = byte(s), byte(s>>8), byte(s>>16)
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(int32(s)))
		}
	}
	return out
}
