package logger

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/config"
)

// New returns a configured zerolog.Logger writing console-formatted output
// to stderr in every environment. The level comes from cfg.LogLevel, with
// info used when it does not parse; debug is forced only when Env is
// "development" and LogLevel is empty.
func New(cfg *config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if cfg.Env == "development" && cfg.LogLevel == "" {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(out).With().Timestamp().Str("service", "feature-restrictions").Logger()
}
