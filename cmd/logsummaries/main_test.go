package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleTelemetry = `{"session_id":"s1","timestamp":"2026-01-02T10:00:00Z","event":"project_created","project":"p1"}
{"session_id":"s1","timestamp":"2026-01-02T10:00:05Z","event":"feedback_succeeded","project":"p1","extra_json":{"tokens":"120","latency_ms":"900"}}
not json
{"session_id":"s2","timestamp":"2026-01-02T10:01:00Z","event":"feedback_failed","project":"p1","extra_json":{"latency_ms":"61000","error":"OpenRouter request failed (500 Internal Server Error)"}}

{"session_id":"s2","timestamp":"2026-01-02T10:02:00Z","event":"project_updated","project":"p2"}
{"session_id":"s2","timestamp":"2026-01-02T10:03:00Z","event":"feedback_succeeded","project":"p2","extra_json":{"tokens":"1,000","latency_ms":"300"}}
{"session_id":"s2","timestamp":"2026-01-02T10:04:00Z","event":"project_deleted","project":"p1"}
`

func TestParseTelemetry(t *testing.T) {
	parsed, err := parseTelemetry(strings.NewReader(sampleTelemetry))
	require.NoError(t, err)

	assert.Len(t, parsed.sessions, 2)
	require.Len(t, parsed.samples, 3)
	assert.True(t, parsed.samples[0].Success)
	assert.Equal(t, int64(120), parsed.samples[0].Tokens)
	assert.Equal(t, 2, parsed.samples[0].Line)
	assert.False(t, parsed.samples[1].Success)
	assert.Contains(t, parsed.samples[1].Error, "500")
	assert.Equal(t, int64(1000), parsed.samples[2].Tokens)

	require.Contains(t, parsed.lifecycle, "p1")
	assert.Equal(t, 1, parsed.lifecycle["p1"].Created)
	assert.Equal(t, 1, parsed.lifecycle["p1"].Deleted)
	assert.Equal(t, 1, parsed.lifecycle["p2"].Updated)
}

func TestBuildReport(t *testing.T) {
	parsed, err := parseTelemetry(strings.NewReader(sampleTelemetry))
	require.NoError(t, err)

	report := buildReport("/tmp/run-7.jsonl", parsed, 2)
	assert.Equal(t, "run-7", report.RunID)
	assert.Equal(t, 2, report.Sessions)
	require.Len(t, report.Snapshots, 2)
	assert.Equal(t, 2, report.Snapshots[0].Requests)
	assert.Equal(t, 1, report.Snapshots[1].Requests)

	final := report.FinalSummary
	assert.Equal(t, 3, final.Requests)
	assert.Equal(t, 1, final.Failures)
	assert.Equal(t, int64(1120), final.TokensTotal)
	assert.Equal(t, float64(900), final.LatencyMedian)
	require.Len(t, final.Anomalies, 1)
	assert.Contains(t, final.Anomalies[0], "latency spike 61000ms")

	require.Len(t, report.Projects, 2)
	assert.Equal(t, "p1", report.Projects[0].Project)
	assert.Equal(t, 2, report.Projects[0].Feedback.Requests)
	assert.Equal(t, "p2", report.Projects[1].Project)
	assert.Equal(t, 1, report.Projects[1].Feedback.Requests)
}

func TestComputeMedian(t *testing.T) {
	assert.Zero(t, computeMedian(nil))
	assert.Equal(t, float64(3), computeMedian([]int64{5, 1, 3}))
	assert.Equal(t, 2.5, computeMedian([]int64{4, 1, 2, 3}))
}

func TestDetectAnomaliesAllFailed(t *testing.T) {
	out := detectAnomalies([]feedbackSample{{Line: 1}, {Line: 2}})
	assert.Equal(t, []string{"all 2 requests failed"}, out)
	assert.Empty(t, detectAnomalies([]feedbackSample{{Line: 1}}))
}

func TestRootCmdWritesReport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "telemetry.jsonl")
	out := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(in, []byte(sampleTelemetry), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--in", in, "--out", out, "--interval", "10"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report telemetryReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "telemetry", report.RunID)
	assert.Len(t, report.Snapshots, 1)
}

func TestRootCmdRequiresInput(t *testing.T) {
	cmd := newRootCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--in")
}
