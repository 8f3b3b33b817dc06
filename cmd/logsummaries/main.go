package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type telemetryEvent struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Project   string            `json:"project"`
	ExtraJSON map[string]string `json:"extra_json"`
}

type feedbackSample struct {
	Timestamp time.Time
	Project   string
	Success   bool
	Tokens    int64
	LatencyMs int64
	Error     string
	Line      int
}

type feedbackAggregate struct {
	StartLine     int       `json:"start_line"`
	EndLine       int       `json:"end_line"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Requests      int       `json:"requests"`
	Failures      int       `json:"failures"`
	TokensTotal   int64     `json:"tokens_total"`
	LatencyMsSum  int64     `json:"latency_ms_sum"`
	LatencyMedian float64   `json:"latency_median"`
	Anomalies     []string  `json:"anomalies,omitempty"`
}

type projectSummary struct {
	Project  string            `json:"project"`
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Deleted  int               `json:"deleted"`
	Feedback feedbackAggregate `json:"feedback"`
}

type telemetryReport struct {
	RunID        string              `json:"run_id"`
	Source       string              `json:"source"`
	Sessions     int                 `json:"sessions"`
	Projects     []projectSummary    `json:"projects"`
	Snapshots    []feedbackAggregate `json:"snapshots"`
	FinalSummary feedbackAggregate   `json:"final_summary"`
}

type parsedTelemetry struct {
	samples   []feedbackSample
	lifecycle map[string]*projectSummary
	sessions  map[string]struct{}
}

const latencySpikeMs = 60000

func newRootCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		interval   int
	)
	cmd := &cobra.Command{
		Use:          "logsummaries",
		Short:        "Summarize project-pal telemetry.jsonl into a JSON report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("missing --in path")
			}
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}
			file, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer file.Close()

			parsed, err := parseTelemetry(file)
			if err != nil {
				return fmt.Errorf("parse telemetry: %w", err)
			}
			report := buildReport(inputPath, parsed, interval)
			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if outputPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return nil
			}
			if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "in", "", "telemetry JSONL path (required)")
	cmd.Flags().StringVar(&outputPath, "out", "", "output JSON path (optional, defaults to stdout)")
	cmd.Flags().IntVar(&interval, "interval", 5, "number of feedback requests per aggregated snapshot")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logsummaries: %v\n", err)
		os.Exit(1)
	}
}

func parseTelemetry(r io.Reader) (parsedTelemetry, error) {
	parsed := parsedTelemetry{
		lifecycle: make(map[string]*projectSummary),
		sessions:  make(map[string]struct{}),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event telemetryEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if event.SessionID != "" {
			parsed.sessions[event.SessionID] = struct{}{}
		}
		switch event.Event {
		case "project_created":
			parsed.summary(event.Project).Created++
		case "project_updated":
			parsed.summary(event.Project).Updated++
		case "project_deleted":
			parsed.summary(event.Project).Deleted++
		case "feedback_succeeded", "feedback_failed":
			parsed.samples = append(parsed.samples, feedbackSample{
				Timestamp: event.Timestamp,
				Project:   event.Project,
				Success:   event.Event == "feedback_succeeded",
				Tokens:    parseIntString(event.ExtraJSON["tokens"]),
				LatencyMs: parseIntString(event.ExtraJSON["latency_ms"]),
				Error:     event.ExtraJSON["error"],
				Line:      lineNo,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return parsedTelemetry{}, err
	}
	return parsed, nil
}

func (p parsedTelemetry) summary(project string) *projectSummary {
	summary, ok := p.lifecycle[project]
	if !ok {
		summary = &projectSummary{Project: project}
		p.lifecycle[project] = summary
	}
	return summary
}

func parseIntString(value string) int64 {
	clean := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if clean == "" {
		return 0
	}
	out, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0
	}
	return out
}

func buildReport(path string, parsed parsedTelemetry, interval int) telemetryReport {
	report := telemetryReport{
		RunID:    deriveRunID(path),
		Source:   path,
		Sessions: len(parsed.sessions),
	}

	samples := append([]feedbackSample(nil), parsed.samples...)
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Timestamp.Before(samples[j].Timestamp) })

	byProject := make(map[string][]feedbackSample)
	for _, sample := range samples {
		byProject[sample.Project] = append(byProject[sample.Project], sample)
		parsed.summary(sample.Project)
	}
	for project, summary := range parsed.lifecycle {
		summary.Feedback = aggregateSegment(byProject[project])
		report.Projects = append(report.Projects, *summary)
	}
	sort.Slice(report.Projects, func(i, j int) bool { return report.Projects[i].Project < report.Projects[j].Project })

	for start := 0; start < len(samples); start += interval {
		end := min(start+interval, len(samples))
		report.Snapshots = append(report.Snapshots, aggregateSegment(samples[start:end]))
	}
	report.FinalSummary = aggregateSegment(samples)
	return report
}

func deriveRunID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func aggregateSegment(segment []feedbackSample) feedbackAggregate {
	if len(segment) == 0 {
		return feedbackAggregate{}
	}
	start := segment[0]
	end := segment[len(segment)-1]

	agg := feedbackAggregate{
		StartLine: start.Line,
		EndLine:   end.Line,
		StartTime: start.Timestamp,
		EndTime:   end.Timestamp,
		Requests:  len(segment),
	}
	latency := make([]int64, 0, len(segment))
	for _, sample := range segment {
		if !sample.Success {
			agg.Failures++
		}
		agg.TokensTotal += sample.Tokens
		agg.LatencyMsSum += sample.LatencyMs
		latency = append(latency, sample.LatencyMs)
	}
	agg.LatencyMedian = computeMedian(latency)
	agg.Anomalies = detectAnomalies(segment)
	return agg
}

func computeMedian(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func detectAnomalies(segment []feedbackSample) []string {
	var out []string
	for _, sample := range segment {
		if sample.LatencyMs > latencySpikeMs {
			out = append(out, fmt.Sprintf("latency spike %dms (line %d)", sample.LatencyMs, sample.Line))
			break
		}
	}
	failures := 0
	for _, sample := range segment {
		if !sample.Success {
			failures++
		}
	}
	if len(segment) > 1 && failures == len(segment) {
		out = append(out, fmt.Sprintf("all %d requests failed", failures))
	}
	return out
}
