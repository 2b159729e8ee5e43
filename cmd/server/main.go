// Package main is the entry point for the microblog server.
package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/microblog/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", v))
			os.Exit(1)
		}
		port = p
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "microblog.db"
	}

	srv, err := server.New(server.Config{Port: port, DBPath: dbPath}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
