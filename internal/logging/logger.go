package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the service logger. Development builds write
// human readable console output; everything else writes JSON.
func NewLogger(appEnv, level string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv, level)
}

func newLogger(out io.Writer, appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
		if appEnv == "development" {
			lvl = zerolog.DebugLevel
		}
	}

	logger := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "satonic-storefront").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger
}
