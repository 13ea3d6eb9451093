package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// newLogger fans records out to a text handler on w and, when tracePath is
// set, a JSON handler on that file at debug level. The returned func closes
// the trace file.
func newLogger(w io.Writer, levelName, tracePath string) (*slog.Logger, func(), error) {
	level, err := parseLogLevel(levelName)
	if err != nil {
		return nil, nil, err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}
	closeFn := func() {}

	if tracePath != "" {
		file, err := os.Create(tracePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closeFn = func() {
			_ = file.Close()
		}
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
