package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options selects level and output format of the process logger.
type Options struct {
	Level  string // zerolog level name
	Format string // console | json
	File   string // empty => stderr
}

// New builds the process logger. The returned closer releases the log file,
// if any.
func New(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.WarnLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	var out io.Writer = os.Stderr
	closer := func() error { return nil }
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = file
		closer = file.Close
	}

	return newLogger(out, opts.Format, level), closer, nil
}

func newLogger(out io.Writer, format string, level zerolog.Level) zerolog.Logger {
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: out != os.Stderr}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
