package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhandary/JLPT/internal/wordlist"
)

// FileResult records what one input file produced
type FileResult struct {
	Path     string
	Base     string
	Mode     wordlist.Mode
	Pairs    int
	Segments int
	Duration time.Duration // total spoken track length
	CSVs     []string
	Video    string
	WAV      string
	AAC      string
	Anki     string
	WorkDir  string // left on disk when set
	Err      error
}

// Summary collects the results of a batch
type Summary struct {
	Files []FileResult
}

// Processed returns the number of files that completed
func (s *Summary) Processed() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error
func (s *Summary) Failed() []FileResult {
	var failed []FileResult
	for _, f := range s.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Print writes a human readable batch summary
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(w, "Total files: %d\n", len(s.Files))
	fmt.Fprintf(w, "Processed: %d\n", s.Processed())
	for _, f := range s.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "  ✗ %s: %v\n", f.Base, f.Err)
			if f.WorkDir != "" {
				fmt.Fprintf(w, "    work files kept in %s\n", f.WorkDir)
			}
			continue
		}
		fmt.Fprintf(w, "  ✓ %s: %d pair(s), %s\n", f.Base, f.Pairs, f.Duration.Round(time.Millisecond))
		for _, artifact := range []string{f.Video, f.WAV, f.AAC, f.Anki} {
			if artifact != "" {
				fmt.Fprintf(w, "    %s\n", artifact)
			}
		}
	}
	if failed := len(s.Failed()); failed > 0 {
		fmt.Fprintf(w, "Errors: %d\n", failed)
	}
	fmt.Fprintf(w, "================================\n")
}

// BatchError reports the files of a batch that failed
type BatchError struct {
	Total    int
	Failures []FileResult
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Path, f.Err)
	}
	return fmt.Sprintf("%d of %d file(s) failed: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes the individual file errors to errors.Is and errors.As
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// batchError returns nil when every file succeeded
func (s *Summary) batchError() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &BatchError{Total: len(s.Files), Failures: failed}
}
