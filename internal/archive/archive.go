// Package archive moves leftover work directories out of the way.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArchiveTemp moves <outputRoot>/temp to <outputRoot>/archive/temp-<timestamp>
// and returns the new location
func ArchiveTemp(outputRoot string) (string, error) {
	return ArchiveDir(filepath.Join(outputRoot, "temp"), time.Now())
}

// ArchiveDir moves dir into an "archive" directory next to it, named after
// dir plus a timestamp
func ArchiveDir(dir string, now time.Time) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}

	archiveDir := filepath.Join(filepath.Dir(dir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(dir)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format("20060102-150405")))

	// Same second as an earlier archive
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format("20060102-150405.000000")))
	}

	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return archivePath, nil
}
