package main

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterDevtoolsPanel(t *testing.T) {
	host := newPanelHost(staticPages)
	registerDevtoolsPanel(host, zap.NewNop())

	p, ok := host.Lookup(devtoolsPanelTitle)
	require.True(t, ok)
	assert.Equal(t, devtoolsPanelIcon, p.Icon)
	assert.Contains(t, p.body, "# Dev Tools")
}

func TestRegisterDevtoolsPanelFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	host := newPanelHost(fstest.MapFS{})

	registerDevtoolsPanel(host, zap.New(core))

	_, ok := host.Lookup(devtoolsPanelTitle)
	assert.False(t, ok)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "devtools panel registration failed", logs.All()[0].Message)
}

func TestPanelHostRequiresTitle(t *testing.T) {
	host := newPanelHost(fstest.MapFS{"pages/x.md": {Data: []byte("x")}})
	_, err := host.Create("  ", "", "pages/x.md")
	assert.ErrorIs(t, err, errPanelTitleRequired)
}

func TestRenderDevtoolsPanel(t *testing.T) {
	p := panel{Title: devtoolsPanelTitle, body: "# Dev Tools\n"}
	cfg := appConfig{
		OpenRouter: openRouterConfig{Model: "m", BaseURL: "https://example.test/v1/"},
		ConfigDir:  "/tmp/pal",
	}

	out := renderDevtoolsPanel(p, cfg)
	assert.Contains(t, out, "Model: `m`")
	assert.Contains(t, out, "Endpoint: `https://example.test/v1/chat/completions`")
	assert.Contains(t, out, "API key: missing")
	assert.NotContains(t, out, "Telemetry")

	cfg.OpenRouter.APIKey = "k"
	cfg.Telemetry = true
	out = renderDevtoolsPanel(p, cfg)
	assert.Contains(t, out, "API key: set")
	assert.Contains(t, out, "Telemetry")
}
