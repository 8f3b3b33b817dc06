package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newFileLogger builds a JSON logger writing to path. The terminal belongs
// to the TUI, so nothing is logged to stdout or stderr.
func newFileLogger(path, level string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// logStoreEvents mirrors store mutations into the log.
func logStoreEvents(store *projectStore, logger *zap.Logger) func() {
	return store.Subscribe(func(event storeEvent) {
		if event.Kind == storeEventActivated {
			logger.Debug("project activated", zap.String("project_id", event.ProjectID))
			return
		}
		logger.Info("project store changed",
			zap.String("event", string(event.Kind)),
			zap.String("project_id", event.ProjectID),
			zap.String("name", event.Name),
		)
	})
}
