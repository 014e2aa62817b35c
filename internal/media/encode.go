package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// EncodeAAC encodes a WAV track to an AAC (.m4a) file
func (t *Toolchain) EncodeAAC(ctx context.Context, wavPath, outputPath string) error {
	if _, err := os.Stat(wavPath); err != nil {
		return fmt.Errorf("input audio: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return t.ffmpeg(ctx, "-y", "-i", wavPath, "-vn", "-c:a", "aac", "-b:a", "128k", outputPath)
}
