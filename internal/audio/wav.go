package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// DecodeWAV reads a PCM WAV stream into a clip
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("not a valid WAV stream: %w", err)
	}
	if dec.NumChans < 1 || dec.BitDepth < 8 {
		return nil, fmt.Errorf("not a valid WAV stream")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("unsupported WAV encoding %d, want linear PCM", dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	format := Format{
		SampleRate:  int(dec.SampleRate),
		Channels:    int(dec.NumChans),
		SampleWidth: int(dec.BitDepth) / 8,
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &Clip{Format: format, Samples: buf.Data}, nil
}

// DecodeWAVBytes decodes an in-memory WAV file
func DecodeWAVBytes(data []byte) (*Clip, error) {
	return DecodeWAV(bytes.NewReader(data))
}

// ReadWAVFile loads a WAV file from disk
func ReadWAVFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clip, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// WriteWAVFile stores the clip as a PCM WAV file, creating parent
// directories as needed
func WriteWAVFile(path string, c *Clip) error {
	w, err := CreateTrack(path, c.Format)
	if err != nil {
		return err
	}
	if err := w.Append(c); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// TrackWriter streams clips of one format into a single WAV file
type TrackWriter struct {
	path    string
	file    *os.File
	enc     *wav.Encoder
	format  Format
	frames  int
	started bool
}

// CreateTrack opens a WAV file for appending clips of the given format
func CreateTrack(path string, format Format) (*TrackWriter, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create WAV file: %w", err)
	}

	return &TrackWriter{
		path:   path,
		file:   file,
		enc:    wav.NewEncoder(file, format.SampleRate, format.BitDepth(), format.Channels, wavFormatPCM),
		format: format,
	}, nil
}

// Append writes the clip at the end of the track
func (w *TrackWriter) Append(c *Clip) error {
	if c.Format != w.format {
		return fmt.Errorf("clip format %s does not match track format %s", c.Format, w.format)
	}
	if err := w.write(c.Samples); err != nil {
		return err
	}
	w.frames += c.Frames()
	return nil
}

func (w *TrackWriter) write(samples []int) error {
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: w.format.Channels, SampleRate: w.format.SampleRate},
		Data:           samples,
		SourceBitDepth: w.format.BitDepth(),
	}
	if err := w.enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	w.started = true
	return nil
}

// Duration returns the playing time written so far
func (w *TrackWriter) Duration() time.Duration {
	return FramesToDuration(w.frames, w.format.SampleRate)
}

// Path returns the file the track is written to
func (w *TrackWriter) Path() string {
	return w.path
}

// Close finalizes the WAV header and closes the file
func (w *TrackWriter) Close() error {
	// the encoder only emits headers on first write
	if !w.started {
		if err := w.write(nil); err != nil {
			w.file.Close()
			return err
		}
	}

	encErr := w.enc.Close()
	fileErr := w.file.Close()
	if encErr != nil {
		return fmt.Errorf("failed to finalize %s: %w", w.path, encErr)
	}
	return fileErr
}
