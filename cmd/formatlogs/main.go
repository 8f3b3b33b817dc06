package main

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// Keys written by the project-pal file logger.
const (
	keyTimestamp  = "timestamp"
	keyLevel      = "level"
	keyMessage    = "msg"
	keyCaller     = "caller"
	keyLogger     = "logger"
	keyStacktrace = "stacktrace"
)

type rawEvent struct {
	line      int
	timestamp string
	level     zapcore.Level
	message   string
	caller    string
	fields    map[string]any
	malformed string
}

type attribute struct {
	label string
	value []string
}

type formattedEvent struct {
	title      string
	category   string
	attributes []attribute
}

type options struct {
	inputPath   string
	outputPath  string
	artifactDir string
	minLevel    string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "formatlogs",
		Short:        "Render the project-pal JSON log as readable blocks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.inputPath, "in", "", "input log file path (required)")
	cmd.Flags().StringVar(&opts.outputPath, "out", "", "output file path (optional, defaults to stdout)")
	cmd.Flags().StringVar(&opts.artifactDir, "artifacts", "", "directory for extracted artifacts (defaults near output)")
	cmd.Flags().StringVar(&opts.minLevel, "level", "debug", "lowest level to include")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "formatlogs: %v\n", err)
		os.Exit(1)
	}
}

func run(stdout io.Writer, opts options) error {
	if opts.inputPath == "" {
		return errors.New("missing --in path")
	}
	var minLevel zapcore.Level
	if err := minLevel.UnmarshalText([]byte(opts.minLevel)); err != nil {
		return fmt.Errorf("invalid --level %q: %w", opts.minLevel, err)
	}

	file, err := os.Open(opts.inputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	events, err := parseLog(bufio.NewScanner(file))
	if err != nil {
		return fmt.Errorf("parse log: %w", err)
	}
	events = filterLevel(events, minLevel)

	store, err := newArtifactStore(resolveArtifactDir(opts.inputPath, opts.outputPath, opts.artifactDir))
	if err != nil {
		return fmt.Errorf("setup artifact store: %w", err)
	}
	rendered, err := renderEvents(events, opts.inputPath, store)
	if err != nil {
		return fmt.Errorf("render events: %w", err)
	}

	if opts.outputPath == "" {
		fmt.Fprintln(stdout, rendered)
		return nil
	}
	if err := os.WriteFile(opts.outputPath, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func parseLog(scanner *bufio.Scanner) ([]rawEvent, error) {
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	var events []rawEvent
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		events = append(events, parseLine(lineNo, line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func parseLine(lineNo int, line string) rawEvent {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return rawEvent{line: lineNo, level: zapcore.InfoLevel, malformed: line}
	}
	evt := rawEvent{line: lineNo, level: zapcore.InfoLevel}
	evt.timestamp = takeString(fields, keyTimestamp)
	evt.message = takeString(fields, keyMessage)
	evt.caller = takeString(fields, keyCaller)
	delete(fields, keyLogger)
	if lvl := takeString(fields, keyLevel); lvl != "" {
		_ = evt.level.UnmarshalText([]byte(lvl))
	}
	evt.fields = fields
	return evt
}

func takeString(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	return stringify(value)
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

func filterLevel(events []rawEvent, min zapcore.Level) []rawEvent {
	out := events[:0]
	for _, evt := range events {
		if evt.level >= min {
			out = append(out, evt)
		}
	}
	return out
}

func renderEvents(events []rawEvent, sourcePath string, store *artifactStore) (string, error) {
	var out []string
	for _, evt := range events {
		lines, err := renderEvent(formatEvent(evt), sourcePath, evt.line, store)
		if err != nil {
			return "", err
		}
		out = append(out, lines...)
		out = append(out, "")
	}
	if len(out) > 0 {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n"), nil
}

func formatEvent(evt rawEvent) formattedEvent {
	switch {
	case evt.malformed != "":
		return formattedEvent{
			title:      "Unparsed Line",
			category:   "log.raw",
			attributes: []attribute{{label: "line", value: []string{evt.malformed}}},
		}
	case strings.HasPrefix(evt.message, "feedback "):
		return formatWithCategory(evt, "Feedback", "feedback."+categorySuffix(evt.level))
	case evt.message == "project store changed" || evt.message == "project activated":
		return formatWithCategory(evt, "Project Store", "store."+strings.ReplaceAll(evt.message, " ", "_"))
	case strings.Contains(evt.message, "panel"):
		return formatWithCategory(evt, "Dev Tools Panel", "panel."+categorySuffix(evt.level))
	default:
		return formatWithCategory(evt, "Log Entry", "log."+evt.level.String())
	}
}

func categorySuffix(level zapcore.Level) string {
	if level >= zapcore.WarnLevel {
		return "failure"
	}
	return "ok"
}

func formatWithCategory(evt rawEvent, title, category string) formattedEvent {
	attrs := []attribute{
		{label: "timestamp", value: []string{evt.timestamp}},
		{label: "level", value: []string{evt.level.CapitalString()}},
		{label: "message", value: []string{evt.message}},
	}
	if evt.caller != "" {
		attrs = append(attrs, attribute{label: "caller", value: []string{evt.caller}})
	}

	keys := make([]string, 0, len(evt.fields))
	for key := range evt.fields {
		if key == keyStacktrace {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attrs = append(attrs, attribute{label: key, value: strings.Split(stringify(evt.fields[key]), "\n")})
	}
	if trace, ok := evt.fields[keyStacktrace]; ok {
		attrs = append(attrs, attribute{label: keyStacktrace, value: trimEmpty(strings.Split(stringify(trace), "\n"))})
	}
	return formattedEvent{title: title, category: category, attributes: attrs}
}

func renderEvent(evt formattedEvent, sourcePath string, line int, store *artifactStore) ([]string, error) {
	var out []string
	out = append(out, "------------------")

	location := sourcePath
	if rel, err := filepath.Rel(".", sourcePath); err == nil {
		location = rel
	}
	out = append(out, fmt.Sprintf("%s · %s (%s:%d)", evt.title, evt.category, location, line))
	out = append(out, "------------------")
	for _, attr := range evt.attributes {
		if len(attr.value) == 0 || (len(attr.value) == 1 && attr.value[0] == "") {
			continue
		}
		if store != nil {
			var err error
			attr, err = store.maybeExternalize(evt, line, attr)
			if err != nil {
				return nil, err
			}
		}
		if len(attr.value) == 1 {
			out = append(out, fmt.Sprintf("%s: %s", attr.label, attr.value[0]))
			continue
		}
		out = append(out, fmt.Sprintf("%s:", attr.label))
		for _, v := range attr.value {
			out = append(out, "  "+v)
		}
	}
	out = append(out, "------------------")
	return out, nil
}

func trimEmpty(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return out
}

type artifactStore struct {
	dir     string
	counter int
}

const (
	maxInlineLines = 40
	maxInlineChars = 4000
)

func resolveArtifactDir(inputPath, outputPath, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	baseDir := filepath.Dir(inputPath)
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if outputPath != "" {
		baseDir = filepath.Dir(outputPath)
		baseName = strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	}
	return filepath.Join(baseDir, baseName+".artifacts")
}

// newArtifactStore creates dir lazily on the first externalized attribute.
func newArtifactStore(dir string) (*artifactStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("artifact dir is empty")
	}
	return &artifactStore{dir: dir}, nil
}

func (s *artifactStore) maybeExternalize(evt formattedEvent, line int, attr attribute) (attribute, error) {
	if s == nil || !shouldExternalize(attr) {
		return attr, nil
	}
	path, checksum, err := s.saveArtifact(evt, line, attr)
	if err != nil {
		return attr, err
	}
	attr.value = []string{fmt.Sprintf("[artifact] %s (lines:%d, sha256:%s)", path, len(attr.value), checksum)}
	return attr, nil
}

func shouldExternalize(attr attribute) bool {
	if attr.label == keyStacktrace {
		return true
	}
	chars := 0
	for _, v := range attr.value {
		chars += len(v)
	}
	return len(attr.value) > maxInlineLines || chars > maxInlineChars
}

func (s *artifactStore) saveArtifact(evt formattedEvent, line int, attr attribute) (string, string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", "", err
	}
	s.counter++
	content := strings.Join(attr.value, "\n")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	baseName := fmt.Sprintf("%04d_%s_%s_%d.txt", s.counter, sanitizeForName(evt.category), sanitizeForName(attr.label), line)
	fullPath := filepath.Join(s.dir, baseName)
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(content))
	relPath, err := filepath.Rel(".", fullPath)
	if err != nil {
		relPath = fullPath
	}
	return filepath.ToSlash(relPath), hex.EncodeToString(sum[:]), nil
}

func sanitizeForName(input string) string {
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	result := strings.Trim(b.String(), "-_")
	if result == "" {
		return "artifact"
	}
	return result
}
