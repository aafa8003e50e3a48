// Package logging builds the zerolog.Logger used across this module's
// services and CLI: structured, leveled, console-pretty when
// Options.Pretty is set and plain JSON otherwise. It does not detect
// whether the output is a terminal.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level parses via zerolog.ParseLevel; an empty string means info.
	Level string
	// Pretty selects the human-readable console writer; without it the
	// output is JSON.
	Pretty bool
	// Output overrides the destination; defaults to os.Stderr.
	Output io.Writer
}

// New builds a configured zerolog.Logger.
func New(opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		if parsed, err := zerolog.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
