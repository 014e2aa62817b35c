package audio

import "fmt"

// Convert returns the clip in the target format. Sample width, channel
// layout and sample rate are changed in that order. Down-mixing averages
// channels and resampling interpolates linearly.
func Convert(c *Clip, target Format) (*Clip, error) {
	if err := c.Format.Validate(); err != nil {
		return nil, fmt.Errorf("source format: %w", err)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target format: %w", err)
	}
	if c.Format == target {
		return c, nil
	}

	out := convertWidth(c, target.SampleWidth)
	out = convertChannels(out, target.Channels)
	out = resample(out, target.SampleRate)
	return out, nil
}

func convertWidth(c *Clip, width int) *Clip {
	from := c.Format.SampleWidth
	if from == width {
		return c
	}

	samples := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		if from == 1 {
			s -= 128
		}
		if width > from {
			s <<= 8 * uint(width-from)
		} else {
			s >>= 8 * uint(from-width)
		}
		if width == 1 {
			s += 128
		}
		samples[i] = s
	}

	format := c.Format
	format.SampleWidth = width
	return &Clip{Format: format, Samples: samples}
}

func convertChannels(c *Clip, channels int) *Clip {
	from := c.Format.Channels
	if from == channels {
		return c
	}

	frames := c.Frames()
	samples := make([]int, frames*channels)
	for f := 0; f < frames; f++ {
		sum := 0
		for ch := 0; ch < from; ch++ {
			sum += c.Samples[f*from+ch]
		}
		mixed := sum / from
		for ch := 0; ch < channels; ch++ {
			samples[f*channels+ch] = mixed
		}
	}

	format := c.Format
	format.Channels = channels
	return &Clip{Format: format, Samples: samples}
}

func resample(c *Clip, rate int) *Clip {
	from := c.Format.SampleRate
	if from == rate {
		return c
	}

	channels := c.Format.Channels
	inFrames := c.Frames()
	outFrames := int(int64(inFrames) * int64(rate) / int64(from))
	samples := make([]int, outFrames*channels)

	step := float64(from) / float64(rate)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * step
		i := int(pos)
		frac := pos - float64(i)
		next := i + 1
		if next >= inFrames {
			next = inFrames - 1
		}
		for ch := 0; ch < channels; ch++ {
			a := float64(c.Samples[i*channels+ch])
			b := float64(c.Samples[next*channels+ch])
			v := a + (b-a)*frac
			if v < 0 {
				samples[f*channels+ch] = int(v - 0.5)
			} else {
				samples[f*channels+ch] = int(v + 0.5)
			}
		}
	}

	format := c.Format
	format.SampleRate = rate
	return &Clip{Format: format, Samples: samples}
}
