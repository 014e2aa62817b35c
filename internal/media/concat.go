package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ManifestName is the concat list written next to the segments
const ManifestName = "concat.txt"

// WriteManifest writes an ffmpeg concat list naming each segment by
// absolute path, in order
func WriteManifest(path string, segments []string) error {
	var b strings.Builder
	for _, segment := range segments {
		abs, err := filepath.Abs(segment)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", segment, err)
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat manifest: %w", err)
	}
	return nil
}

// Concatenator joins rendered segments into one file without re-encoding
type Concatenator struct {
	tools *Toolchain
}

// NewConcatenator creates a concatenator
func NewConcatenator(tools *Toolchain) *Concatenator {
	return &Concatenator{tools: tools}
}

// Concatenate writes the manifest next to the first segment, replaces any
// existing output and stream-copies the segments into it. It returns the
// absolute output path.
func (c *Concatenator) Concatenate(ctx context.Context, segments []string, output string) (string, error) {
	if len(segments) == 0 {
		return "", errors.New("no segments to concatenate")
	}

	absOutput, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	manifest := filepath.Join(filepath.Dir(segments[0]), ManifestName)
	if err := WriteManifest(manifest, segments); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(absOutput), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.Remove(absOutput); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to remove existing output: %w", err)
	}

	if err := c.tools.ffmpeg(ctx, "-f", "concat", "-safe", "0", "-i", manifest, "-c", "copy", absOutput); err != nil {
		return "", err
	}
	return absOutput, nil
}

// VerifyDuration probes path and compares its duration with want. It
// returns the probed duration and whether it lies within tolerance.
func (t *Toolchain) VerifyDuration(ctx context.Context, path string, want, tolerance time.Duration) (time.Duration, bool, error) {
	probe, err := t.Probe(ctx, path)
	if err != nil {
		return 0, false, err
	}
	got := probe.Duration()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return got, diff <= tolerance, nil
}
