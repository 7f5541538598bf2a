package main

import (
	"context"
	"log/slog"
	"os"

	"fieldforce/internal/app/server"
	"fieldforce/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	if err := server.Run(context.Background(), cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
