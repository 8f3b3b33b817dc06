package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

//go:embed pages/*.md
var staticPages embed.FS

const (
	devtoolsPanelTitle = "Dev Tools"
	devtoolsPanelIcon  = "project logo.svg"
	devtoolsPanelPage  = "pages/devtools.md"
)

var errPanelTitleRequired = errors.New("panel title is required")

type panel struct {
	Title string
	Icon  string
	Page  string
	body  string
}

// panelHost owns the panels registered at startup.
type panelHost struct {
	pages  fs.FS
	panels []panel
}

func newPanelHost(pages fs.FS) *panelHost {
	return &panelHost{pages: pages}
}

// Create registers a panel backed by a static page.
func (h *panelHost) Create(title, icon, page string) (panel, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return panel{}, errPanelTitleRequired
	}
	data, err := fs.ReadFile(h.pages, page)
	if err != nil {
		return panel{}, fmt.Errorf("read panel page %s: %w", page, err)
	}
	p := panel{Title: title, Icon: icon, Page: page, body: string(data)}
	h.panels = append(h.panels, p)
	return p, nil
}

func (h *panelHost) Lookup(title string) (panel, bool) {
	if h == nil {
		return panel{}, false
	}
	for _, p := range h.panels {
		if p.Title == title {
			return p, true
		}
	}
	return panel{}, false
}

// registerDevtoolsPanel adds the Dev Tools panel. A failure is logged and
// the program carries on without the panel.
func registerDevtoolsPanel(host *panelHost, logger *zap.Logger) {
	if _, err := host.Create(devtoolsPanelTitle, devtoolsPanelIcon, devtoolsPanelPage); err != nil {
		logger.Error("devtools panel registration failed", zap.Error(err))
	}
}

// renderDevtoolsPanel renders the static page followed by runtime details.
func renderDevtoolsPanel(p panel, cfg appConfig) string {
	var b strings.Builder
	b.WriteString(p.body)
	b.WriteString("\n## Runtime\n\n")
	b.WriteString(fmt.Sprintf("* Model: `%s`\n", cfg.OpenRouter.Model))
	b.WriteString(fmt.Sprintf("* Endpoint: `%s/chat/completions`\n", strings.TrimRight(cfg.OpenRouter.BaseURL, "/")))
	keyState := "missing"
	if cfg.HasAPIKey() {
		keyState = "set"
	}
	b.WriteString(fmt.Sprintf("* API key: %s\n", keyState))
	if cfg.ConfigDir != "" {
		b.WriteString(fmt.Sprintf("* Log file: `%s`\n", cfg.LogPath()))
	}
	if cfg.Telemetry {
		b.WriteString(fmt.Sprintf("* Telemetry: `%s`\n", cfg.TelemetryPath()))
	}
	return b.String()
}
