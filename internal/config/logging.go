package config

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/rshade/virtuallist/internal/logging"
)

// Logger receives warnings raised while the configuration is loaded, before the CLI logger exists.
//
//nolint:gochecknoglobals // Replaced in tests.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
	With().Timestamp().Str("component", "config").Logger()

// ToLoggingConfig converts the logging section into a logging.Config. A configured file switches
// the output to that file; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}
