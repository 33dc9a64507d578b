// Package logging builds the zerolog logger shared by the CLI and the
// library packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	Level string    // trace, debug, info, warn, error or disabled
	JSON  bool      // structured output instead of the console writer
	Out   io.Writer // defaults to os.Stderr
	RunID string    // defaults to a fresh UUID
}

// New returns a logger tagged with a run id. Unknown levels fall back to info.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: !isTerminal(out)}
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}

	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Str("run", runID).
		Logger()
}

// isTerminal reports whether w is a terminal that understands color escapes.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewRunID returns a short random identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()[:8]
}
