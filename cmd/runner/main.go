package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ci-relay/config"
	"ci-relay/internal/model"
	"ci-relay/internal/pipeline"
	"ci-relay/internal/service"
	"ci-relay/pkg/coverage"
	"ci-relay/pkg/log"
)

// One-shot pipeline execution: reads a normalized event from a JSON
// file, runs the unit-test pipeline against it, and exits 0 on success
// or skip, 1 on failure. Mirrors the pass/fail signal surfaced to the
// triggering host.
func main() {
	eventPath := flag.String("event", "event.json", "path to a normalized event JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := os.ReadFile(*eventPath)
	if err != nil {
		logger.Errorf(ctx, "Failed to read event file: %v", err)
		os.Exit(1)
	}

	var event model.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		logger.Errorf(ctx, "Failed to parse event file: %v", err)
		os.Exit(1)
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}

	provisioner, err := service.NewDockerProvisioner(
		cfg.Pipeline.ReadinessInterval,
		cfg.Pipeline.ReadinessMaxAttempts,
		logger,
	)
	if err != nil {
		logger.Errorf(ctx, "Container daemon unavailable: %v", err)
		os.Exit(1)
	}

	covClient := coverage.NewClient(cfg.Coverage.URL, cfg.Coverage.Token)
	runner := pipeline.New(
		pipeline.NewShellExecutor("", cfg.Pipeline.StepTimeout),
		provisioner,
		pipeline.UploadActions(covClient),
		logger,
	)

	result := runner.Run(ctx, event, pipeline.UnitTestPipeline(cfg))

	switch result.Status {
	case model.StatusSkipped:
		logger.Infof(ctx, "Pipeline skipped: trigger did not match %s@%s", event.EventType, event.Branch)
	case model.StatusSucceeded:
		logger.Infof(ctx, "Pipeline succeeded (run %s)", result.RunID)
	case model.StatusFailed:
		logger.Errorf(ctx, "Pipeline failed at %s (exit %d)", result.FailedStep, result.ExitCode)
		os.Exit(1)
	}
}
