package wordlist

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Row is one non-blank line of a word list, split into trimmed fields
type Row struct {
	Index  int
	Line   int
	Fields []string
}

// List is a loaded word list
type List struct {
	Path string
	Rows []Row
}

// Load reads the word list at path.
// The format is newline-delimited with comma-separated fields and no quoting,
// so a comma inside a word always splits it. Blank lines are skipped.
func Load(path string) (*List, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrNotFound}
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	list := Parse(path, string(content))
	if len(list.Rows) == 0 {
		return nil, &LoadError{Path: path, Err: ErrEmpty}
	}

	return list, nil
}

// Parse splits already-read word list content into rows
func Parse(path, content string) *List {
	list := &List{Path: path}

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}

		list.Rows = append(list.Rows, Row{
			Index:  len(list.Rows),
			Line:   i + 1,
			Fields: fields,
		})
	}

	return list
}

// DetectMode picks the projection mode from the first row's field count.
// Three fields select the grapheme/phonetic/gloss layout only when the
// source language supports it.
func (l *List) DetectMode(allowTriple bool) Mode {
	if len(l.Rows) == 0 {
		return ModePair
	}
	if allowTriple && len(l.Rows[0].Fields) == 3 {
		return ModeTriple
	}
	return ModePair
}
