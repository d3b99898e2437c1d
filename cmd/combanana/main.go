// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

// Command combanana serves the Combo-Banana web UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	combanana "github.com/fmind/combanana"
	"github.com/fmind/combanana/artifact"
	"github.com/fmind/combanana/config"
	"github.com/fmind/combanana/executor"
	"github.com/fmind/combanana/model"
	"github.com/fmind/combanana/pkg/logging"
	"github.com/fmind/combanana/planner"
	"github.com/fmind/combanana/server"
	"github.com/fmind/combanana/session"
)

const (
	sweepInterval     = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("combanana exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LoggingLevel)
	slog.SetDefault(logger)
	ctx = logging.NewContext(ctx, logger)

	opts := model.Options{
		Project:         cfg.Project,
		Location:        cfg.Location,
		UseVertexAI:     cfg.UseVertexAI,
		APIKey:          cfg.APIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	}
	languageGen, err := model.NewGenerator(ctx, opts, cfg.LanguageModel)
	if err != nil {
		return fmt.Errorf("create language model %s: %w", cfg.LanguageModel, err)
	}
	imageGen, err := model.NewGenerator(ctx, opts, cfg.ImageModel)
	if err != nil {
		return fmt.Errorf("create image model %s: %w", cfg.ImageModel, err)
	}

	sessions := session.NewInMemoryService(cfg.SessionTTL)

	var artifacts artifact.Service
	if cfg.ArtifactBucket != "" {
		artifacts, err = artifact.NewGCSService(ctx, cfg.ArtifactBucket)
		if err != nil {
			return fmt.Errorf("create artifact bucket %s: %w", cfg.ArtifactBucket, err)
		}
	} else {
		artifacts = artifact.NewInMemoryService()
	}
	defer artifacts.Close()

	go sweep(ctx, sessions, artifacts)

	srv := server.New(
		planner.New(languageGen),
		executor.New(imageGen),
		sessions,
		artifacts,
		server.WithLogger(logger),
	)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return logging.NewContext(context.Background(), logger)
		},
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	logger.InfoContext(ctx, "combanana listening",
		slog.String("version", combanana.Version),
		slog.String("addr", cfg.Addr),
		slog.String("language_model", cfg.LanguageModel),
		slog.String("image_model", cfg.ImageModel),
	)

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweep periodically drops expired sessions and releases their artifacts.
func sweep(ctx context.Context, sessions *session.InMemoryService, artifacts artifact.Service) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range sessions.Sweep(ctx) {
				if err := artifacts.DeleteSession(ctx, id); err != nil {
					logging.FromContext(ctx).WarnContext(ctx, "artifact cleanup failed",
						slog.String("session_id", id),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}
}
