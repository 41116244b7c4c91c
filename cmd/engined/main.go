// ====================================
// File: cmd/engined/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thrustlabs/thrust-engine/internal/config"
	"github.com/thrustlabs/thrust-engine/internal/engine"
	"github.com/thrustlabs/thrust-engine/internal/events"
	"github.com/thrustlabs/thrust-engine/internal/logger"
	"github.com/thrustlabs/thrust-engine/internal/server"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     cfg.LogMaxSizeMB,
		MaxAge:      cfg.LogMaxAge,
		MaxBackups:  cfg.LogBackups,
		Compress:    true,
		Development: cfg.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting thrust engine", zap.String("listen_addr", cfg.ListenAddr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := state.NewStore()
	v := vault.New(log.Logger)
	bus := events.NewBus(log.Logger)

	if cfg.WebhookURL != "" {
		notifier := events.NewWebhookNotifier(cfg.WebhookURL, log.Logger)
		notifier.Attach(bus)
		log.Info("Webhook notifier attached", zap.String("url", cfg.WebhookURL))
	}

	eng := engine.New(st, v, bus, log.Logger)

	owner, err := cfg.Owner()
	if err != nil {
		return fmt.Errorf("invalid owner key: %w", err)
	}
	signer, err := cfg.Signer()
	if err != nil {
		return fmt.Errorf("invalid signer key: %w", err)
	}
	if err := eng.InitMainState(ctx, owner, signer); err != nil {
		return fmt.Errorf("failed to initialize platform state: %w", err)
	}

	srv := server.New(eng, st, v, log.Logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, cfg.ListenAddr)
	})

	if err := g.Wait(); err != nil {
		log.Error("Engine stopped with error", zap.Error(err))
		return err
	}
	log.Info("Engine stopped")
	return nil
}
