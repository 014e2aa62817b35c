package wordlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV writes pairs as "source,target" lines, one per pair.
// The output uses the same unquoted format Load reads.
func WriteCSV(path string, pairs []WordPair) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var b strings.Builder
	for _, pair := range pairs {
		b.WriteString(pair.Source)
		b.WriteByte(',')
		b.WriteString(pair.Target)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadPairs loads a two-column CSV previously written by WriteCSV
func ReadPairs(path string) ([]WordPair, error) {
	list, err := Load(path)
	if err != nil {
		return nil, err
	}

	projections, err := list.Project(ModePair)
	if err != nil {
		return nil, err
	}
	return projections[0].Pairs, nil
}
