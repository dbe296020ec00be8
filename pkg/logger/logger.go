package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns the process-wide structured logger: one JSON object per line
// on stdout, tagged with the environment. Local and dev log at debug so
// scoped-access denials are visible while developing.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(appEnv) {
	case "local", "dev":
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("env", appEnv)
}
