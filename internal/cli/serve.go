package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lacasadark/casadark-core/internal/api"
	"github.com/lacasadark/casadark-core/internal/cache"
	"github.com/lacasadark/casadark-core/internal/config"
	"github.com/lacasadark/casadark-core/internal/db"
	"github.com/lacasadark/casadark-core/internal/export"
	"github.com/lacasadark/casadark-core/internal/logging"
	"github.com/lacasadark/casadark-core/internal/project"
	"github.com/lacasadark/casadark-core/internal/subtitle"
	"github.com/lacasadark/casadark-core/internal/ui"
	"github.com/lacasadark/casadark-core/internal/webhook"
)

func newServeCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local caption and EDL service",
		Long: `Run the HTTP service on 127.0.0.1 with the project store and the export
queue. Settings come from CASADARK_* environment variables, read after the
optional .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			return runServe(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return cmd
}

func runServe(out io.Writer) error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.ExportsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create exports dir: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel())
	logger.Info("starting casadark service", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := project.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintf(out, "║  LA CASA DARK CORE %-58s ║\n", config.Version)
	fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  API URL:    http://127.0.0.1:%-47d ║\n", cfg.Port())
	fmt.Fprintf(out, "║  Auth Token: %-64s ║\n", authToken)
	fmt.Fprintf(out, "║  Exports:    %-64s ║\n", cfg.ExportsDir())
	fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)

	defaults := export.DefaultSettings()
	defaults.Narration = subtitle.NarrationOptions{
		MaxCharsPerBlock: cfg.MaxCharsPerBlock(),
		GapBetweenScenes: cfg.GapBetweenScenes(),
	}
	defaults.FPS = cfg.FPS()
	defaults.TransitionFrames = cfg.TransitionFrames()

	projectSvc := project.NewService(repo, cfg.ExportsDir(), defaults, logging.WithComponent(logger, "projects"))

	notifier := webhook.New(cfg.WebhookURL(), cfg.WebhookToken(), logging.WithComponent(logger, "webhook"))
	if cfg.WebhookURL() != "" {
		logger.Info("export webhook enabled", "url", cfg.WebhookURL(), "token", logging.SanitizeToken(cfg.WebhookToken()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := project.NewRunner(projectSvc, repo, notifier, logging.WithComponent(logger, "runner"))
	go runner.Start(ctx)

	renderCache := cache.NewRenderCache(cfg.RenderCacheTTL(), logging.WithComponent(logger, "cache"))

	apiServer := api.NewServer(api.ServerConfig{
		Port:            cfg.Port(),
		Projects:        projectSvc,
		Repository:      repo,
		Runner:          runner,
		RenderCache:     renderCache,
		Defaults:        defaults,
		RateLimitPerMin: cfg.RateLimitPerMin(),
		Logger:          logger,
		StartTime:       startTime,
		Version:         config.Version,
	})

	if err := apiServer.Listen(); err != nil {
		return err
	}
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})
	var quitOnce sync.Once
	quit := func() { quitOnce.Do(func() { close(quitCh) }) }

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Projects:   projectSvc,
			Runner:     runner,
			Logger:     logging.WithComponent(logger, "tray"),
			ExportsDir: cfg.ExportsDir(),
			OnOpenExports: func(dir string) error {
				logger.Info("opening exports folder", "dir", logging.SanitizePath(dir))
				return ui.OpenFolder(dir)
			},
			OnQuit: quit,
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo project.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, api.AuthTokenKey)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
