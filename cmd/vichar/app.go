package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sachkhoj/vichar/internal/banidb"
	"github.com/sachkhoj/vichar/internal/config"
	"github.com/sachkhoj/vichar/internal/home"
	"github.com/sachkhoj/vichar/internal/ollama"
	"github.com/sachkhoj/vichar/internal/pipeline"
	"github.com/sachkhoj/vichar/internal/progress"
)

// app holds the wired-up collaborators for a single command invocation.
type app struct {
	home     *home.Dir
	cfg      *config.Manager
	logger   *slog.Logger
	gen      *ollama.Client
	store    *progress.Store
	pipeline *pipeline.Pipeline
}

// newApp resolves the home directory and configuration, then constructs the
// clients, store and pipeline. Config changes on disk are picked up live and
// pushed into the generation client.
func newApp() (*app, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}

	file := cfgFile
	if file == "" && h.ConfigExists() {
		file = h.ConfigPath()
	}
	cm, err := config.NewManager(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := cm.Get()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	progressPath := cfg.ProgressFile
	if progressPath == "" {
		progressPath = h.ProgressPath()
	}
	outputDir := cfg.Output.Dir
	if outputDir == "" {
		outputDir = h.OutputPath()
	}
	debugDir := cfg.DebugDir
	if debugDir == "" {
		debugDir = h.DebugPath()
	}

	source := banidb.NewClient(banidb.Config{
		BaseURL:            cfg.BaniDB.BaseURL,
		SourceID:           cfg.BaniDB.SourceID,
		Timeout:            cfg.BaniDB.Timeout,
		MaxAttempts:        cfg.BaniDB.MaxAttempts,
		TranslationSources: cfg.BaniDB.TranslationSources,
		Logger:             logger,
	})
	gen := ollama.NewClient(ollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
		Options: cfg.GenerationOptions(),
		Logger:  logger,
	})
	store := progress.NewStore(progressPath, cfg.BaniDB.TotalAngs, logger)

	pl := pipeline.New(source, gen, store, pipeline.Config{
		OutputDir: outputDir,
		DebugDir:  debugDir,
		SaveHTML:  cfg.Output.SaveHTML,
		SaveText:  cfg.Output.SaveText,
		TotalAngs: cfg.BaniDB.TotalAngs,
	}, logger)

	cm.OnChange(func(c *config.Config) {
		gen.SetOptions(c.GenerationOptions())
	})
	cm.WatchConfig()

	return &app{
		home:     h,
		cfg:      cm,
		logger:   logger,
		gen:      gen,
		store:    store,
		pipeline: pl,
	}, nil
}

// preflight verifies the generation server is reachable before any work
// starts. A missing model is only a warning since the server may pull it
// lazily.
func (a *app) preflight(ctx context.Context) error {
	status, err := a.gen.CheckAvailability(ctx)
	if err != nil {
		return fmt.Errorf("ollama server unavailable: %w", err)
	}
	if !status.ModelReady {
		a.logger.Warn("configured model not installed on server",
			"model", a.cfg.Get().Ollama.Model,
			"installed", status.Models)
	}
	return nil
}
