package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func readTelemetry(t *testing.T, path string) []telemetryEvent {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []telemetryEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event telemetryEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestTelemetryLoggerFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "telemetry.jsonl")
	logger := newTelemetryLogger(path, " session-1 ", "alice", nil)

	logger.Emit(telemetryEvent{Event: "project_created", Project: "p1"})
	logger.Emit(telemetryEvent{Event: "  "})

	events := readTelemetry(t, path)
	require.Len(t, events, 1)
	assert.Equal(t, "session-1", events[0].SessionID)
	assert.Equal(t, "alice", events[0].UserID)
	assert.Equal(t, "p1", events[0].Project)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestNilTelemetryLoggerIsSilent(t *testing.T) {
	var logger *telemetryLogger
	assert.NotPanics(t, func() {
		logger.Emit(telemetryEvent{Event: "project_created"})
	})
	store := newProjectStore()
	unsubscribe := trackStoreEvents(store, nil)
	mustCreate(t, store, "P")
	unsubscribe()
}

func TestTrackStoreEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	store := newProjectStore()
	unsubscribe := trackStoreEvents(store, newTelemetryLogger(path, newTelemetrySessionID(), "bob", nil))
	defer unsubscribe()

	p := mustCreate(t, store, "P")
	store.SetActive("")
	store.AppendStory(p.ID, "story")
	store.Update(p.ID, ProjectFields{Name: "P2"})
	store.Delete(p.ID, yes)

	events := readTelemetry(t, path)
	names := make([]string, 0, len(events))
	for _, event := range events {
		names = append(names, event.Event)
		assert.Equal(t, p.ID, event.Project)
	}
	assert.Equal(t, []string{"project_created", "project_updated", "project_deleted"}, names)
}

func TestTelemetryWriteFailureIsLogged(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newTelemetryLogger(filepath.Join(blocker, "telemetry.jsonl"), "s", "u", zap.New(core))

	logger.Emit(telemetryEvent{Event: "project_created"})
	logger.Emit(telemetryEvent{Event: "project_updated"})

	entries := logs.FilterMessage("telemetry write failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "project_created", entries[0].ContextMap()["event"])
}
