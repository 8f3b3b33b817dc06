package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const uiPreferencesFile = "ui.yaml"

// uiPreferences holds view settings that outlive a session. Projects are
// never written here.
type uiPreferences struct {
	Theme string `yaml:"theme,omitempty"`
}

func (p *uiPreferences) normalize() {
	if p.Theme != "" {
		p.Theme = string(markdownThemeFromString(p.Theme))
	}
}

// loadUIPreferences returns the saved preferences and the path they live at.
// A missing file yields defaults without error; an unreadable or corrupt one
// yields defaults and the error.
func loadUIPreferences(configDir string) (*uiPreferences, string, error) {
	path := filepath.Join(configDir, uiPreferencesFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &uiPreferences{}, path, nil
	}
	if err != nil {
		return &uiPreferences{}, path, fmt.Errorf("read %s: %w", path, err)
	}
	var prefs uiPreferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return &uiPreferences{}, path, fmt.Errorf("parse %s: %w", path, err)
	}
	prefs.normalize()
	return &prefs, path, nil
}

// saveUIPreferences replaces the file at path through a temp file so a
// failed write leaves the previous preferences in place.
func saveUIPreferences(prefs *uiPreferences, path string) error {
	if prefs == nil {
		prefs = &uiPreferences{}
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, uiPreferencesFile+".*")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}

// resolveConfigDir picks the per-user directory for logs, telemetry and
// preferences.
func resolveConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "project-pal")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".project-pal")
	}
	return filepath.Join(os.TempDir(), "project-pal")
}
