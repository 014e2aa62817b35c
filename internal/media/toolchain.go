package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Toolchain locates and runs the ffmpeg family of tools
type Toolchain struct {
	FFmpeg  string
	FFprobe string
	Runner  Runner
	Log     zerolog.Logger
}

// NewToolchain returns a toolchain using the given binaries, defaulting to
// "ffmpeg" and "ffprobe" from PATH
func NewToolchain(ffmpeg, ffprobe string, log zerolog.Logger) *Toolchain {
	ffmpeg = strings.TrimSpace(ffmpeg)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe = strings.TrimSpace(ffprobe)
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Toolchain{FFmpeg: ffmpeg, FFprobe: ffprobe, Runner: ExecRunner{}, Log: log}
}

// CheckInstalled reports a missing ffmpeg or ffprobe binary
func (t *Toolchain) CheckInstalled() error {
	for _, binary := range []string{t.FFmpeg, t.FFprobe} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s is not installed or not in PATH: %w", binary, err)
		}
	}
	return nil
}

// run executes a tool and converts failures into a RenderError
func (t *Toolchain) run(ctx context.Context, binary string, args ...string) (*Result, error) {
	t.Log.Debug().Str("tool", binary).Strs("args", args).Msg("running media tool")

	result, err := t.Runner.Run(ctx, Command{Binary: binary, Args: args})
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, err
	}

	renderErr := &RenderError{Tool: binary, Args: args, ExitCode: -1, Err: err}
	if result != nil {
		renderErr.ExitCode = result.ExitCode
		renderErr.Stderr = string(result.Stderr)
	}
	return result, renderErr
}

func (t *Toolchain) ffmpeg(ctx context.Context, args ...string) error {
	base := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	_, err := t.run(ctx, t.FFmpeg, append(base, args...)...)
	return err
}
