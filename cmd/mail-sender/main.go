package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/physoxy/internal/app/mailsender"
	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting mail sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := mailsender.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize mail sender", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("mail sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("mail sender stopped gracefully")
}
