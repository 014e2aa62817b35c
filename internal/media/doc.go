// Package media drives ffmpeg and ffprobe: it renders captioned video
// segments from assembled audio tracks, concatenates segments losslessly,
// encodes audio-only tracks and probes durations.
package media
