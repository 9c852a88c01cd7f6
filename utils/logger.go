package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger fields
const (
	PACKAGE = "pkg"
	FUNC    = "func"
	EVENT   = "event"
	USER    = "user"
	ID      = "id"
)

// InitLogger configures the global zerolog logger.
func InitLogger(level string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// NewPackageLogger returns a logger with pkg={pkg}.
func NewPackageLogger(pkg string) zerolog.Logger {
	return log.With().Str(PACKAGE, pkg).Logger()
}
