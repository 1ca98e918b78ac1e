package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ci-relay/config"
	_ "ci-relay/docs" // Swagger docs
	"ci-relay/internal/dispatch"
	"ci-relay/internal/httpserver"
	"ci-relay/internal/notify"
	"ci-relay/internal/pipeline"
	"ci-relay/internal/service"
	"ci-relay/internal/webhook"
	"ci-relay/pkg/coverage"
	"ci-relay/pkg/log"
	"ci-relay/pkg/slack"
)

// @title       CI Relay API
// @description CI orchestration and notification relay for source-control webhook events.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting CI relay...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Event router
	router := dispatch.New(logger)

	// Unit-test pipeline: needs a local container daemon for the backing
	// database. Optional — without it the relay still serves notifications.
	provisioner, provErr := service.NewDockerProvisioner(
		cfg.Pipeline.ReadinessInterval,
		cfg.Pipeline.ReadinessMaxAttempts,
		logger,
	)
	if provErr != nil {
		logger.Warnf(ctx, "Pipeline runner disabled (no container daemon): %v", provErr)
	} else {
		covClient := coverage.NewClient(cfg.Coverage.URL, cfg.Coverage.Token)
		runner := pipeline.New(
			pipeline.NewShellExecutor("", cfg.Pipeline.StepTimeout),
			provisioner,
			pipeline.UploadActions(covClient),
			logger,
		)
		router.Register(pipeline.NewHandler(runner, pipeline.UnitTestPipeline(cfg)))
		logger.Infof(ctx, "Unit-test pipeline registered for push on %s", cfg.Pipeline.Branch)
	}

	// Notification rules
	if cfg.Chat.WebhookURL != "" {
		slackClient := slack.NewClient(cfg.Chat.WebhookURL, cfg.Chat.WebhookType)
		notifier := notify.New(slackClient, logger)
		for _, h := range notifier.Handlers() {
			router.Register(h)
		}
		logger.Info(ctx, "Notification rules registered")
	} else {
		logger.Warn(ctx, "Chat webhook URL missing, notification rules skipped")
	}

	// 4. Webhook ingest
	var webhookHandler *webhook.Handler
	if cfg.Webhook.Enabled {
		webhookHandler = webhook.NewHandler(router, webhook.SecurityConfig{
			Secret:          cfg.Webhook.Secret,
			AllowedIPs:      cfg.Webhook.AllowedIPs,
			RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
		}, logger)
	} else {
		logger.Warn(ctx, "Webhook ingest disabled by config")
	}

	// 5. HTTP Server
	srvCfg := httpserver.Config{
		Logger:      logger,
		Port:        cfg.HTTPServer.Port,
		Mode:        cfg.HTTPServer.Mode,
		Environment: cfg.Environment.Name,
	}
	if webhookHandler != nil {
		srvCfg.WebhookHandler = webhookHandler
	}
	httpServer, err := httpserver.New(logger, srvCfg)
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 6. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
