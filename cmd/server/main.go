// Package main is the entry point for the coditor API server.
//
// main stays minimal: read configuration, create dependencies, start the
// server. All actual logic lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Rohitkumar43/coditor/internal/executor/piston"
	"github.com/Rohitkumar43/coditor/internal/server"
)

func main() {
	// .env is optional: real deployments set environment variables
	// directly, .env is a local-development convenience.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default for production deployments, e.g.
	// DB_PATH=/var/lib/coditor/prod.db
	dbPath := "data/coditor.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// AUTH_SECRET is the shared signing secret configured in the identity
	// provider's dashboard. Without it no request can be authenticated, so
	// refuse to start rather than run an unusable server.
	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		logger.Error("AUTH_SECRET not set")
		os.Exit(1)
	}

	// WEBHOOK_SECRET is the svix endpoint secret (whsec_...) for identity
	// webhooks.
	webhookSecret := os.Getenv("WEBHOOK_SECRET")
	if webhookSecret == "" {
		logger.Error("WEBHOOK_SECRET not set")
		os.Exit(1)
	}

	// PISTON_URL points at a self-hosted execution service; empty means the
	// public hosted instance.
	exec := piston.New(os.Getenv("PISTON_URL"), logger)

	cfg := server.Config{
		Port:          port,
		DBPath:        dbPath,
		AuthSecret:    authSecret,
		WebhookSecret: webhookSecret,
	}

	srv, err := server.New(cfg, logger, exec)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
