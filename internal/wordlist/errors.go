package wordlist

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a word list path does not exist
	ErrNotFound = errors.New("word list not found")

	// ErrEmpty is returned when a word list holds no rows
	ErrEmpty = errors.New("word list is empty")
)

// LoadError reports a word list that could not be read
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load word list %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MalformedRowError reports a row with fewer fields than the projection needs
type MalformedRowError struct {
	Path   string
	Row    int // zero-based row index after blank lines are skipped
	Line   int // one-based line number in the file
	Fields int
	Want   int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: row %d has %d field(s), want at least %d",
		e.Path, e.Line, e.Row, e.Fields, e.Want)
}
