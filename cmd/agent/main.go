package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hexbot/internal/app"
	"hexbot/internal/config"
	"hexbot/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON agent config")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(environ()); err != nil {
		slog.Error("invalid environment", "err", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})
	base := slog.New(handler).With("game", cfg.GameID, "seat", cfg.Seat)
	slog.SetDefault(base)
	logger := logging.NewSlogLogger(base)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("main: agent %s joining %s", cfg.UserID, cfg.ServerURL)
	err := app.NewSession(cfg, logger, nil).Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		logger.Info("main: agent stopped")
	default:
		logger.Error("main: agent failed: %v", err)
		os.Exit(1)
	}
}

// environ returns the hexbot_* variables of the process environment.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, config.EnvPrefix) {
			env[key] = val
		}
	}
	return env
}
