// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls logger construction
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	Output  io.Writer
	NoColor bool
}

// ApplyDefaults fills unset options
func (o *Options) ApplyDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "console"
	}
	if o.Output == nil {
		o.Output = os.Stderr
	}
}

// New creates a logger. An unknown level falls back to info.
func New(opts Options) zerolog.Logger {
	opts.ApplyDefaults()

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if strings.ToLower(opts.Format) == "json" {
		log = zerolog.New(opts.Output)
	} else {
		log = zerolog.New(consoleWriter(opts))
	}

	return log.Level(level).With().Timestamp().Logger()
}

// Level returns "debug" when debug is set and "info" otherwise
func Level(debug bool) string {
	if debug {
		return "debug"
	}
	return "info"
}

func consoleWriter(opts Options) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        opts.Output,
		TimeFormat: "15:04:05",
		NoColor:    opts.NoColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToUpper(fmt.Sprintf("%s", i))
			tag, color := "["+lvl+"]", ""
			switch lvl {
			case "DEBUG":
				tag, color = "[DBG]", "\033[36m"
			case "INFO":
				tag, color = "[INF]", "\033[32m"
			case "WARN":
				tag, color = "[WRN]", "\033[33m"
			case "ERROR":
				tag, color = "[ERR]", "\033[31m"
			case "FATAL":
				tag, color = "[FTL]", "\033[35m"
			}
			if opts.NoColor || color == "" {
				return tag
			}
			return color + tag + "\033[0m"
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
