package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Debug mode writes coloured
// console output, any other mode writes JSON lines at info level.
func Init(mode string) {
	log.Logger = New(mode, os.Stdout)
}

func New(mode string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if mode == "debug" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	return zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}
