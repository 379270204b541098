package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Project-Sylos/Nimbus/internal/api"
	"github.com/Project-Sylos/Nimbus/internal/config"
	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/sdk"
)

// sessionSweepInterval is how often expired bearer sessions are purged
const sessionSweepInterval = 10 * time.Minute

func main() {
	configPath := flag.String("config", "", "Configuration file path (YAML). Empty uses defaults and NIMBUS_* env vars")
	flag.Parse()
	if *configPath == "" && flag.NArg() > 0 {
		*configPath = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Initializing Nimbus (database=%s, blob=%s)", cfg.Database.Driver, cfg.Blob.Type)
	nimbus, err := sdk.NewWithConfig(cfg)
	if err != nil {
		logger.Error("Failed to initialize Nimbus: %v", err)
		os.Exit(1)
	}

	server := api.NewServer(nimbus, &cfg.API)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, nimbus)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to start server: %v", err)
			nimbus.Close()
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
		os.Exit(1)
	}
	logger.Info("Server shutdown complete")
}

// sweepSessions drops expired sessions until ctx is cancelled
func sweepSessions(ctx context.Context, nimbus *sdk.Nimbus) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := nimbus.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("Failed to purge expired sessions: %v", err)
				continue
			}
			if purged > 0 {
				logger.Debug("Purged %d expired sessions", purged)
			}
		}
	}
}
