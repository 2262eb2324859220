package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Format "auto" picks the console
// writer when out is a terminal and JSON lines otherwise. Extra writers
// (the debug log file) always receive JSON.
func NewLogger(lc LogConfig, out io.Writer, extra ...io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(lc.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	primary := out
	if useConsole(lc.Format, out) {
		primary = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	w := primary
	if len(extra) > 0 {
		w = zerolog.MultiLevelWriter(append([]io.Writer{primary}, extra...)...)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// OpenDebugLog opens <dataDir>/debug.log for appending when SPURCHAT_DEBUG
// is set. It returns nil, nil when debug logging is off.
func OpenDebugLog(dataDir string) (*os.File, error) {
	if !CheckDebug() {
		return nil, nil
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: may contain prompts and upstream error bodies
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not open debug log at %s: %w", logPath, err)
	}
	return f, nil
}
