package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envAPIKey         = "VITE_OPENROUTER_API_KEY"
	envAPIKeyFallback = "OPENROUTER_API_KEY"
	envModel          = "OPENROUTER_MODEL"
	envBaseURL        = "OPENROUTER_BASE_URL"
	envTimeout        = "OPENROUTER_TIMEOUT"
	envTemperature    = "OPENROUTER_TEMPERATURE"
	envMaxTokens      = "OPENROUTER_MAX_TOKENS"
	envLogLevel       = "PROJECT_PAL_LOG_LEVEL"
	envTelemetry      = "PROJECT_PAL_TELEMETRY"
	envConfigDir      = "PROJECT_PAL_CONFIG_DIR"
)

type openRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type appConfig struct {
	OpenRouter openRouterConfig
	LogLevel   string
	Telemetry  bool
	ConfigDir  string
	// EnvFiles lists the .env files that were actually loaded.
	EnvFiles []string
}

func (c appConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.OpenRouter.APIKey) != ""
}

func (c appConfig) LogPath() string {
	return filepath.Join(c.ConfigDir, "project-pal.log")
}

func (c appConfig) TelemetryPath() string {
	return filepath.Join(c.ConfigDir, "telemetry.jsonl")
}

// loadConfig reads .env files (when present) and the process environment.
// A missing API key is not an error here; it surfaces when feedback is
// requested.
func loadConfig(envFiles ...string) (appConfig, error) {
	var loaded []string
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	for _, path := range envFiles {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return appConfig{}, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}

	timeout, err := getEnvAsSeconds(envTimeout, defaultRequestTimeout)
	if err != nil {
		return appConfig{}, err
	}
	temperature, err := getEnvAsFloat(envTemperature, defaultTemperature)
	if err != nil {
		return appConfig{}, err
	}
	if temperature < 0 || temperature > 2 {
		return appConfig{}, fmt.Errorf("%s must be between 0 and 2, got %v", envTemperature, temperature)
	}
	maxTokens, err := getEnvAsInt(envMaxTokens, defaultMaxTokens)
	if err != nil {
		return appConfig{}, err
	}
	telemetry, err := getEnvAsBool(envTelemetry, false)
	if err != nil {
		return appConfig{}, err
	}

	cfg := appConfig{
		OpenRouter: openRouterConfig{
			APIKey:      firstNonEmpty(os.Getenv(envAPIKey), os.Getenv(envAPIKeyFallback)),
			BaseURL:     getEnv(envBaseURL, defaultOpenRouterBaseURL),
			Model:       getEnv(envModel, defaultOpenRouterModel),
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Timeout:     timeout,
		},
		LogLevel:  strings.ToLower(getEnv(envLogLevel, "info")),
		Telemetry: telemetry,
		ConfigDir: getEnv(envConfigDir, resolveConfigDir()),
		EnvFiles:  loaded,
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}

func getEnvAsSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be seconds or a duration: %w", key, err)
	}
	return value, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
