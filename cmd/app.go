package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"quizcast/internal/archive"
	"quizcast/internal/auth"
	"quizcast/internal/automation"
	"quizcast/internal/content"
	"quizcast/internal/generate"
	"quizcast/internal/library"
	"quizcast/internal/settings"
	"quizcast/internal/youtube"
	"quizcast/pkg/config"
	"quizcast/pkg/templates"
)

// app bundles the wired components the commands share.
type app struct {
	cfg        *config.Config
	store      settings.Store
	flow       *auth.Flow
	uploader   *youtube.Client
	controller *automation.Controller
	library    *library.Library
	archiver   archive.Archiver
}

func buildApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	store, err := settings.NewFileStore(cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	seedClientCredentials(store, cfg)

	uploader := youtube.NewClient(store,
		youtube.WithCategory(cfg.Upload.CategoryID),
		youtube.WithPrivacy(cfg.Upload.PrivacyStatus),
	)

	flow := auth.New(store, auth.Options{
		ListenAddr:   cfg.Auth.ListenAddr,
		CallbackPath: cfg.Auth.CallbackPath,
		Wait:         cfg.Auth.Wait(),
		ChannelTitle: uploader.ChannelTitle,
	})

	lib, err := templates.LoadFrom(cfg.Upload.TemplatesPath)
	if err != nil {
		slog.Debug("No templates file, using built-in sets", "path", cfg.Upload.TemplatesPath)
		lib = templates.Default()
	}
	planner, err := content.New(cfg.Automation.ContentPolicy, lib)
	if err != nil {
		return nil, err
	}

	generator := generate.NewExecGenerator(
		cfg.Generator.Command,
		cfg.Generator.OutputDir,
		cfg.Generator.ExtraArgs...,
	)

	archiver, err := buildArchiver(ctx, cfg)
	if err != nil {
		return nil, err
	}

	controller := automation.NewController(automation.ControllerOptions{
		Generator: generator,
		Uploader:  uploader,
		Planner:   planner,
		Archiver:  archiver,
		Delay:     cfg.Automation.Delay(),
	})

	return &app{
		cfg:        cfg,
		store:      store,
		flow:       flow,
		uploader:   uploader,
		controller: controller,
		library:    library.New(cfg.Generator.OutputDir),
		archiver:   archiver,
	}, nil
}

// buildArchiver picks GCS archiving when a bucket is configured, plain
// local deletion otherwise.
func buildArchiver(ctx context.Context, cfg *config.Config) (archive.Archiver, error) {
	if cfg.Archive.GCS && cfg.GCSBucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.GCSBucket, cfg.Archive.Prefix)
		if err != nil {
			return nil, fmt.Errorf("set up GCS archiver: %w", err)
		}
		return archiver, nil
	}
	return archive.NewCleaner(), nil
}

// seedClientCredentials copies OAuth client credentials from the
// environment into the settings store when the store has none, so a
// .env-only install works without running setup first.
func seedClientCredentials(store settings.Store, cfg *config.Config) {
	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return
	}
	if existing, _, _ := store.Get(settings.KeyClientID); existing != "" {
		return
	}
	if err := settings.SaveClient(store, cfg.YouTubeClientID, cfg.YouTubeClientSecret); err != nil {
		slog.Warn("Failed to seed client credentials from environment", "error", err)
		return
	}
	slog.Debug("Seeded client credentials from environment")
}

// automationConfig maps the configured automation defaults onto a run
// config.
func automationConfig(cfg *config.Config) automation.Config {
	return automation.Config{
		VideoType:    cfg.Automation.VideoType,
		NumQuestions: cfg.Automation.NumQuestions,
		QuestionTime: cfg.Automation.QuestionTime,
		AnswerTime:   cfg.Automation.AnswerTime,
		Shorts:       cfg.Automation.Shorts,
		Resolution:   cfg.Automation.Resolution,
	}
}
