package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the console logger used by the headless commands. The TUI owns
// the terminal, so it writes to the logbook instead.
func New(level string, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: out != io.Writer(os.Stderr)}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel accepts debug, info, warn or error. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	switch level {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(level)
	default:
		return zerolog.NoLevel, fmt.Errorf("logging: unknown level %q", level)
	}
}
