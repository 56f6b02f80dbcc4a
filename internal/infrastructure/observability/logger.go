package observability

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. Dev mode switches to the
// human-readable console writer.
func NewLogger(level string, dev bool) *zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	var logger zerolog.Logger
	if dev {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	logger = logger.Level(lvl).With().Timestamp().Str("service", "har-analyzer").Logger()
	return &logger
}
