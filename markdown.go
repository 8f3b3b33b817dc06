package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

// markdownRenderer caches a glamour renderer per theme and wrap width.
// Feedback text and the Dev Tools page both go through it.
type markdownRenderer struct {
	mu       sync.Mutex
	theme    markdownTheme
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(theme markdownTheme, width int) *markdownRenderer {
	return &markdownRenderer{theme: theme, width: width}
}

// Render returns terminal output for content, or content itself when
// glamour cannot render it.
func (r *markdownRenderer) Render(content string) string {
	out, err := r.render(content)
	if err != nil {
		return content
	}
	return out
}

func (r *markdownRenderer) render(content string) (string, error) {
	renderer, err := r.ensure()
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

func (r *markdownRenderer) ensure() (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderer != nil {
		return r.renderer, nil
	}
	options := []glamour.TermRendererOption{
		glamour.WithWordWrap(r.width),
	}
	switch r.theme {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	return renderer, nil
}

func (r *markdownRenderer) SetWidth(width int) {
	if width < 0 {
		width = 0
	}
	r.mu.Lock()
	if r.width != width {
		r.width = width
		r.renderer = nil
	}
	r.mu.Unlock()
}

func (r *markdownRenderer) SetTheme(theme markdownTheme) {
	if theme == "" {
		theme = markdownThemeAuto
	}
	r.mu.Lock()
	if r.theme != theme {
		r.theme = theme
		r.renderer = nil
	}
	r.mu.Unlock()
}

func (r *markdownRenderer) Theme() markdownTheme {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.theme
}

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}
