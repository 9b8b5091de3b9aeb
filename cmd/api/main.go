package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apollodao/cw-dex-sub000/internal/config"
	"github.com/apollodao/cw-dex-sub000/internal/eth"
	"github.com/apollodao/cw-dex-sub000/internal/handler"
	"github.com/apollodao/cw-dex-sub000/internal/logging"
	"github.com/apollodao/cw-dex-sub000/internal/native"
	"github.com/apollodao/cw-dex-sub000/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ledger := native.Empty()
	if cfg.NativePoolsFile != "" {
		if ledger, err = native.Load(cfg.NativePoolsFile); err != nil {
			return err
		}
		logger.Info("native pools loaded", "file", cfg.NativePoolsFile, "pools", len(ledger.IDs()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ethereumClient, err := eth.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	poolService := service.NewPoolService(logger, ethereumClient, ledger, service.Settings{
		Router:           cfg.RouterAddress,
		PairFeeBps:       cfg.PairFeeBps,
		AmpPrecision:     cfg.AmpPrecision,
		MinimumLiquidity: cfg.MinimumLiquidity,
	})
	handler.NewPoolHandler(logger, poolService).Register(app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			ethereumClient.Close()
			return fmt.Errorf("server error: %w", err)
		}
		ethereumClient.Close()
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_ = app.ShutdownWithContext(shutdownCtx)

	ethereumClient.Close()
	return nil
}
