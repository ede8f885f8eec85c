// Package logger wires zerolog as the process-wide structured logger.
// Call Init once during startup; components receive the returned logger
// through their constructors rather than reaching for a global.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options selects output format and verbosity.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else,
	// including the empty string, falls back to info.
	Level string
	// Pretty switches from JSON lines to a colored console writer.
	// Keep it off outside local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
}

var (
	root zerolog.Logger
	once sync.Once
	set  bool
)

// Init builds the root logger. Subsequent calls return the logger from the
// first call unchanged.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		level := toLevel(opts.Level)
		zerolog.SetGlobalLevel(level)

		root = zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
		set = true
	})
	return root
}

// Get returns the root logger and panics when Init has not run yet. Prefer
// injecting the logger; Get exists for code with no constructor to thread it
// through.
func Get() zerolog.Logger {
	if !set {
		panic("logger: Get called before Init")
	}
	return root
}

func toLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
