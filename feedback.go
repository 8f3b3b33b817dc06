package main

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	errFeedbackInFlight = errors.New("feedback is already being generated")
	errNoActiveProject  = errors.New("open a project before requesting feedback")
	errEmptyDraft       = errors.New("write a user story first")
)

type feedbackResult struct {
	ProjectID string
	Story     string
	Feedback  string
	Appended  bool
	Tokens    int
	Latency   time.Duration
	Err       error
}

func (r feedbackResult) OK() bool {
	return r.Err == nil
}

// Message is the inline text shown for a failed request.
func (r feedbackResult) Message() string {
	return displayError(r.Err)
}

// displayError turns an error into a sentence for the view.
func displayError(err error) string {
	if err == nil {
		return ""
	}
	text := strings.TrimSpace(err.Error())
	first, size := utf8.DecodeRuneInString(text)
	if size == 0 {
		return ""
	}
	text = string(unicode.ToUpper(first)) + text[size:]
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, ")") {
		text += "."
	}
	return text
}

// feedbackRequester turns a draft story into AI feedback for the active
// project. Only one request may be outstanding.
type feedbackRequester struct {
	store     *projectStore
	client    completionClient
	logger    *zap.Logger
	telemetry *telemetryLogger

	mu         sync.Mutex
	generating bool
	feedback   map[string]string
}

func newFeedbackRequester(store *projectStore, client completionClient, logger *zap.Logger, telemetry *telemetryLogger) *feedbackRequester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &feedbackRequester{
		store:     store,
		client:    client,
		logger:    logger,
		telemetry: telemetry,
		feedback:  make(map[string]string),
	}
}

func (r *feedbackRequester) Generating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generating
}

// Feedback returns the cached feedback for a project.
func (r *feedbackRequester) Feedback(projectID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.feedback[projectID]
	return text, ok
}

func (r *feedbackRequester) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generating {
		return false
	}
	r.generating = true
	return true
}

func (r *feedbackRequester) finish() {
	r.mu.Lock()
	r.generating = false
	r.mu.Unlock()
}

// Request asks for feedback on draft against the project active right now.
func (r *feedbackRequester) Request(ctx context.Context, draft string) feedbackResult {
	return r.RequestFor(ctx, r.store.ActiveID(), draft)
}

// RequestFor asks for feedback on draft against projectID, which the caller
// resolves when the user asks. The returned result always describes the
// outcome; failures leave the store untouched.
func (r *feedbackRequester) RequestFor(ctx context.Context, projectID, draft string) feedbackResult {
	story := strings.TrimSpace(draft)
	result := feedbackResult{ProjectID: projectID, Story: story}
	if !r.begin() {
		result.Err = errFeedbackInFlight
		return result
	}
	defer r.finish()

	project, ok := r.store.Get(projectID)
	if projectID == "" || !ok {
		result.Err = errNoActiveProject
		return result
	}
	if story == "" {
		result.Err = errEmptyDraft
		return result
	}

	started := time.Now()
	reply, err := r.client.Complete(ctx, feedbackSystemPrompt, buildFeedbackPrompt(project, story))
	result.Latency = time.Since(started)
	if err != nil {
		result.Err = err
		r.logger.Warn("feedback request failed",
			zap.String("project_id", project.ID),
			zap.Duration("latency", result.Latency),
			zap.Error(err),
		)
		r.emit("feedback_failed", result)
		return result
	}

	r.mu.Lock()
	r.feedback[project.ID] = reply.Content
	r.mu.Unlock()

	result.Feedback = reply.Content
	result.Tokens = reply.TotalTokens
	result.Appended = r.store.AppendStory(project.ID, story)
	r.logger.Info("feedback received",
		zap.String("project_id", project.ID),
		zap.String("model", reply.Model),
		zap.Int("tokens", reply.TotalTokens),
		zap.Duration("latency", result.Latency),
		zap.Bool("story_appended", result.Appended),
	)
	r.emit("feedback_succeeded", result)
	return result
}

func (r *feedbackRequester) emit(event string, result feedbackResult) {
	extra := map[string]string{
		"latency_ms": strconv.FormatInt(result.Latency.Milliseconds(), 10),
	}
	if result.Tokens > 0 {
		extra["tokens"] = strconv.Itoa(result.Tokens)
	}
	if result.Err != nil {
		extra["error"] = result.Err.Error()
	}
	r.telemetry.Emit(telemetryEvent{
		Event:     event,
		Project:   result.ProjectID,
		ExtraJSON: extra,
	})
}
