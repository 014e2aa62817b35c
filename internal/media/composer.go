package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CaptionStyle fixes how every caption frame of a run looks
type CaptionStyle struct {
	Font       string // font file path or fontconfig family name
	FontSize   int
	Color      string
	Background string
	Width      int
	Height     int
	FPS        int
}

// DefaultCaptionStyle returns the white-on-black 720p style
func DefaultCaptionStyle() CaptionStyle {
	return CaptionStyle{
		Font:       "wqy-microhei.ttc",
		FontSize:   50,
		Color:      "white",
		Background: "black",
		Width:      1280,
		Height:     720,
		FPS:        25,
	}
}

// Validate checks that the style can be rendered
func (s CaptionStyle) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("caption font size must be positive, got %d", s.FontSize)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", s.Width, s.Height)
	}
	if s.Width%2 != 0 || s.Height%2 != 0 {
		return fmt.Errorf("frame size %dx%d must be even for yuv420p", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", s.FPS)
	}
	return nil
}

// Segment is one rendered clip of the final video
type Segment struct {
	Path     string
	Index    int
	Duration time.Duration
}

// SegmentSpec describes one segment to render
type SegmentSpec struct {
	Caption    string
	AudioPath  string
	Duration   time.Duration
	OutputPath string
}

// Composer renders captioned segments
type Composer struct {
	tools *Toolchain
	style CaptionStyle
	font  string // resolved drawtext font option
}

// NewComposer creates a composer for one run
func NewComposer(tools *Toolchain, style CaptionStyle) (*Composer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &Composer{tools: tools, style: style, font: resolveFont(style.Font)}, nil
}

// RenderSegment renders a solid background with the caption centered and
// the audio track as soundtrack, cut to exactly spec.Duration
func (c *Composer) RenderSegment(ctx context.Context, spec SegmentSpec) error {
	if spec.Duration <= 0 {
		return fmt.Errorf("segment %s: duration must be positive", filepath.Base(spec.OutputPath))
	}
	if spec.OutputPath == "" {
		return errors.New("segment output path is empty")
	}
	if _, err := os.Stat(spec.AudioPath); err != nil {
		return fmt.Errorf("segment audio: %w", err)
	}

	// The caption goes through a file so drawtext never has to escape
	// the text itself.
	captionPath := strings.TrimSuffix(spec.OutputPath, filepath.Ext(spec.OutputPath)) + ".txt"
	if err := os.WriteFile(captionPath, []byte(spec.Caption), 0644); err != nil {
		return fmt.Errorf("failed to write caption file: %w", err)
	}

	return c.tools.ffmpeg(ctx, c.segmentArgs(spec, captionPath)...)
}

func (c *Composer) segmentArgs(spec SegmentSpec, captionPath string) []string {
	seconds := formatSeconds(spec.Duration)
	background := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s",
		c.style.Background, c.style.Width, c.style.Height, c.style.FPS, seconds)

	drawtext := fmt.Sprintf("drawtext=%s:textfile=%s:expansion=none:fontcolor=%s:fontsize=%d:x=(w-text_w)/2:y=(h-text_h)/2",
		c.font, escapeFilterValue(captionPath), c.style.Color, c.style.FontSize)

	return []string{
		"-y",
		"-f", "lavfi", "-i", background,
		"-i", spec.AudioPath,
		"-vf", drawtext,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "128k", "-ar", "48000", "-ac", "1",
		"-t", seconds,
		spec.OutputPath,
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// resolveFont turns the configured font into a drawtext option. A path that
// exists, or a file found in the system font directories, becomes fontfile;
// anything else is handed to fontconfig as a family name.
func resolveFont(font string) string {
	font = strings.TrimSpace(font)
	if font == "" {
		return "font=Sans"
	}
	if _, err := os.Stat(font); err == nil {
		return "fontfile=" + escapeFilterValue(font)
	}
	if !strings.ContainsRune(font, filepath.Separator) {
		for _, pattern := range []string{
			"/usr/share/fonts/*/" + font,
			"/usr/share/fonts/*/*/" + font,
			"/usr/local/share/fonts/" + font,
		} {
			if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
				return "fontfile=" + escapeFilterValue(matches[0])
			}
		}
	}
	return "font=" + escapeFilterValue(strings.TrimSuffix(font, filepath.Ext(font)))
}

// escapeFilterValue escapes a filter option value for use inside -vf. The
// value is unescaped twice by ffmpeg: once as part of the filter graph and
// once as an option of its filter.
func escapeFilterValue(value string) string {
	return escapeRunes(escapeRunes(value, `\':`), `\'[],;`)
}

func escapeRunes(value, special string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
