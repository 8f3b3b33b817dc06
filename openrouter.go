package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
	defaultTemperature       = 0.7
	defaultMaxTokens         = 800
	defaultRequestTimeout    = 60 * time.Second

	maxResponseBytes  = 4 * 1024 * 1024
	maxErrorBodyRunes = 200
	appTitle          = "Project Pal"
	appReferer        = "https://github.com/ManavTri/project-pal"
)

var (
	errMissingAPIKey = errors.New("Missing OpenRouter API key. Set VITE_OPENROUTER_API_KEY in your env.")
	errEmptyResponse = errors.New("empty response from OpenRouter")
)

// statusError reports a non-2xx reply from the completion endpoint.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	body := truncateRunes(strings.TrimSpace(e.Body), maxErrorBodyRunes)
	if body == "" {
		return fmt.Sprintf("OpenRouter request failed (%d %s)", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("OpenRouter request failed (%d %s): %s", e.Code, http.StatusText(e.Code), body)
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "…"
}

type completion struct {
	Content     string
	Model       string
	TotalTokens int
}

type completionClient interface {
	Complete(ctx context.Context, system, user string) (completion, error)
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type openRouterResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type openRouterClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

func newOpenRouterClient(cfg openRouterConfig) *openRouterClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenRouterModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	// Zero is a valid temperature; loadConfig supplies the default.
	temperature := cfg.Temperature
	if temperature < 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &openRouterClient{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *openRouterClient) endpoint() string {
	return c.baseURL + "/chat/completions"
}

// Complete sends one chat completion. There is no retry.
func (c *openRouterClient) Complete(ctx context.Context, system, user string) (completion, error) {
	if c.apiKey == "" {
		return completion{}, errMissingAPIKey
	}

	payload, err := json.Marshal(openRouterRequest{
		Model: c.model,
		Messages: []openRouterMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return completion{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", appReferer)
	req.Header.Set("X-Title", appTitle)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return completion{}, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return completion{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return completion{}, &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	var decoded openRouterResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return completion{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return completion{}, errEmptyResponse
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return completion{}, errEmptyResponse
	}
	return completion{
		Content:     content,
		Model:       decoded.Model,
		TotalTokens: decoded.Usage.TotalTokens,
	}, nil
}
