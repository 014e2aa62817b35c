package media

import (
	"fmt"
	"strings"
)

// RenderError reports a media tool that exited unsuccessfully
type RenderError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + lastLine(stderr)
	}
	return msg
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Command returns the failed command line for logging
func (e *RenderError) Command() string {
	return e.Tool + " " + strings.Join(e.Args, " ")
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
