package logger

import (
	"io"
	"os"
	"strings"

	"campus-complaints/internal/config"

	"github.com/rs/zerolog"
)

// New builds the application logger. Console output is the default; set
// log.format=json for machine-readable lines. When log.file is set, lines
// are appended to that file instead of stdout.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	var w io.Writer = os.Stdout
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), err
		}
		w = file
	}
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: cfg.File != ""}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
