package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Project   string            `json:"project,omitempty"`
	ExtraJSON map[string]string `json:"extra_json,omitempty"`
}

// telemetryLogger appends usage events as JSON lines. A nil logger drops
// every event, which is how telemetry stays off by default.
type telemetryLogger struct {
	path      string
	sessionID string
	userID    string
	logger    *zap.Logger

	mu     sync.Mutex
	failed bool
}

func newTelemetryLogger(path, sessionID, userID string, logger *zap.Logger) *telemetryLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &telemetryLogger{
		path:      path,
		sessionID: strings.TrimSpace(sessionID),
		userID:    strings.TrimSpace(userID),
		logger:    logger,
	}
}

// Emit records event. The first write failure is logged as a warning and
// later ones at debug.
func (t *telemetryLogger) Emit(event telemetryEvent) {
	if t == nil || strings.TrimSpace(event.Event) == "" {
		return
	}
	if event.SessionID == "" {
		event.SessionID = t.sessionID
	}
	if strings.TrimSpace(event.UserID) == "" {
		event.UserID = t.userID
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if len(event.ExtraJSON) == 0 {
		event.ExtraJSON = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.appendLocked(event)
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("event", event.Event), zap.String("path", t.path), zap.Error(err)}
	if t.failed {
		t.logger.Debug("telemetry write failed", fields...)
		return
	}
	t.failed = true
	t.logger.Warn("telemetry write failed", fields...)
}

func (t *telemetryLogger) appendLocked(event telemetryEvent) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create telemetry dir: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(event); err != nil {
		f.Close()
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return f.Close()
}

// trackStoreEvents records project lifecycle events. Selection changes are
// not recorded.
func trackStoreEvents(store *projectStore, t *telemetryLogger) func() {
	if t == nil {
		return func() {}
	}
	return store.Subscribe(func(event storeEvent) {
		var name string
		switch event.Kind {
		case storeEventCreated:
			name = "project_created"
		case storeEventUpdated:
			name = "project_updated"
		case storeEventDeleted:
			name = "project_deleted"
		default:
			return
		}
		t.Emit(telemetryEvent{Event: name, Project: event.ProjectID})
	})
}

func newTelemetrySessionID() string {
	return uuid.NewString()
}

func resolveTelemetryUserID() string {
	return firstNonEmpty(
		os.Getenv("PROJECT_PAL_USER_ID"),
		os.Getenv("USER"),
		os.Getenv("USERNAME"),
	)
}
