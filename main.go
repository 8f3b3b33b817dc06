package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	themeFlag string
	envFiles  []string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "project-pal",
	Short: "Track projects and get AI feedback on user stories",
	Long: `Project Pal keeps a small in-memory portfolio of projects and asks an
OpenRouter chat model for feedback on new user stories.

Set VITE_OPENROUTER_API_KEY in the environment or a .env file before
requesting feedback. Projects are not saved between runs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVar(&themeFlag, "theme", "", "Markdown rendering theme: auto, light, or dark")
	rootCmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env, .env.local)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	cfg, err := loadConfig(envFiles...)
	if err != nil {
		return err
	}

	logger, err := newFileLogger(cfg.LogPath(), cfg.LogLevel, verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting project-pal",
		zap.String("model", cfg.OpenRouter.Model),
		zap.Bool("api_key_set", cfg.HasAPIKey()),
		zap.Strings("env_files", cfg.EnvFiles),
	)

	var telemetry *telemetryLogger
	if cfg.Telemetry {
		telemetry = newTelemetryLogger(cfg.TelemetryPath(), newTelemetrySessionID(), resolveTelemetryUserID(), logger)
	}

	store := newProjectStore()
	defer logStoreEvents(store, logger)()
	defer trackStoreEvents(store, telemetry)()

	requester := newFeedbackRequester(store, newOpenRouterClient(cfg.OpenRouter), logger, telemetry)

	panels := newPanelHost(staticPages)
	registerDevtoolsPanel(panels, logger)

	prefs, prefsPath, err := loadUIPreferences(cfg.ConfigDir)
	if err != nil {
		logger.Warn("loading ui preferences failed", zap.Error(err))
	}
	if cmd.Flags().Changed("theme") {
		prefs.Theme = string(markdownThemeFromString(themeFlag))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := newModel(ctx, appDeps{
		cfg:       cfg,
		store:     store,
		requester: requester,
		panels:    panels,
		logger:    logger,
		prefs:     prefs,
		prefsPath: prefsPath,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		return err
	}
	return nil
}
