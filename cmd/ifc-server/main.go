// cmd/ifc-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ifc-api/internal/app"
	"ifc-api/internal/common/config"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
	"ifc-api/pkg/registry"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a config file (default: configs/config.yaml with environment overlay)")
	registryPath := pflag.String("registry", "", "path to an endpoint registry JSON file (default: built in)")
	pflag.Parse()

	bootLog := logger.New("info", "console")
	bootLog.Info("Starting IFC API server...")

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format).With(
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if cfg.EnvFile != "" {
		zapLog.Info("Loaded environment file", zap.String("path", cfg.EnvFile))
	}

	reg := registry.Default()
	if *registryPath != "" {
		reg, err = registry.LoadRegistry(*registryPath)
		if err != nil {
			zapLog.Fatal("endpoint registry load failed", zap.Error(err))
		}
	}

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	application, err := app.New(app.Options{
		Config:        cfg,
		Registry:      reg,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("application wiring failed", zap.Error(err))
	}

	if err := application.Server.Start(); err != nil {
		zapLog.Fatal("http server failed to start", zap.Error(err))
	}
	zapLog.Info("IFC API server ready",
		zap.String("address", application.Server.Addr()),
		zap.String("scratchDir", cfg.Storage.ScratchDir),
		zap.Int("parseWorkers", cfg.Engine.ParseWorkers),
	)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err, ok := <-application.Server.Errors():
		if ok {
			zapLog.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	if err := application.Server.Shutdown(context.Background()); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := application.Close(); err != nil {
		zapLog.Error("Error purging models", zap.Error(err))
	}

	zapLog.Info("IFC API server stopped gracefully")
}
