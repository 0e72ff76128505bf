package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/quotegather/yahoo-data/internal/config"
	"github.com/quotegather/yahoo-data/internal/database"
	"github.com/quotegather/yahoo-data/internal/market"
	"github.com/quotegather/yahoo-data/internal/poller"
	"github.com/quotegather/yahoo-data/internal/router"
	"github.com/quotegather/yahoo-data/internal/stream"
	"github.com/quotegather/yahoo-data/internal/version"
	"github.com/quotegather/yahoo-data/internal/writer"
	"github.com/quotegather/yahoo-data/internal/yahoo"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.local.yaml", "path to config file")
	healthPort := flag.Int("health-port", 8080, "health endpoint port")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	runID := uuid.New()

	logger.Info("starting gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", runID,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"symbols", len(cfg.Symbols.Tickers),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create Yahoo client
	clientOpts := []yahoo.Option{
		yahoo.WithLogger(logger),
		yahoo.WithTimeout(cfg.Yahoo.Timeout),
		yahoo.WithAuthRetries(cfg.Yahoo.AuthRetries),
	}
	if cfg.Yahoo.UserAgent != "" {
		clientOpts = append(clientOpts, yahoo.WithUserAgent(cfg.Yahoo.UserAgent))
	}
	client, err := yahoo.NewClient(clientOpts...)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	// Instrument registry seeded from configuration
	registry := market.NewRegistry(cfg.Symbols.Tickers, logger)

	// Bar pipeline: poller -> buffer -> bar writer
	barBuf := router.NewGrowableBuffer[router.BarMsg](cfg.Writers.BufferSize)

	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
	}

	barWriter := writer.NewBarWriter(writerCfg, barBuf, pool.Postgres, logger)
	if err := barWriter.Start(ctx); err != nil {
		logger.Error("failed to start bar writer", "error", err)
		os.Exit(1)
	}

	barHandler := poller.BarHandlerFunc(func(symbol string, bars []yahoo.Quote) error {
		for _, b := range bars {
			barBuf.Send(router.BarMsg{
				Ticker:    symbol,
				Timestamp: b.Timestamp,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				AdjClose:  b.AdjClose,
				Volume:    b.Volume,
			})
		}
		return nil
	})

	chartPoller := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Timeout:     cfg.Yahoo.Timeout,
		BarInterval: cfg.Symbols.Interval,
		BarRange:    cfg.Symbols.Range,
	}, client, registry, barHandler, logger)

	if err := chartPoller.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// Tick pipeline: streamer -> router -> tick writer
	streamMgr := stream.NewManager(stream.ManagerConfig{
		URL:               cfg.Stream.URL,
		ReconnectBaseWait: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxWait:  cfg.Stream.ReconnectMaxDelay,
		PingInterval:      cfg.Stream.PingInterval,
		PingTimeout:       cfg.Stream.ReadTimeout,
		MessageBufferSize: cfg.Writers.BufferSize,
	}, cfg.Symbols.Tickers, logger)

	if err := streamMgr.Start(ctx); err != nil {
		logger.Error("failed to start streamer", "error", err)
		os.Exit(1)
	}

	msgRouter := router.NewRouter(router.RouterConfig{
		TickBufferSize: cfg.Writers.BufferSize,
	}, streamMgr.Messages(), logger)

	if err := msgRouter.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}

	tickWriter := writer.NewTickWriter(writerCfg, msgRouter.Buffers().Tick, pool.Postgres, logger)
	if err := tickWriter.Start(ctx); err != nil {
		logger.Error("failed to start tick writer", "error", err)
		os.Exit(1)
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *healthPort),
		Handler: createHealthHandler(pool, registry, streamMgr, logger),
	}

	go func() {
		logger.Info("starting health server", "port", *healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("gatherer running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", *healthPort),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop producers before consumers
	chartPoller.Stop(shutdownCtx)
	streamMgr.Stop(shutdownCtx)
	msgRouter.Stop(shutdownCtx)
	barBuf.Close()
	barWriter.Stop(shutdownCtx)
	tickWriter.Stop(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("gatherer stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *database.Pool, registry *market.Registry, streamMgr stream.Manager, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Check streamer
		stats := streamMgr.Stats()
		health.Components["streamer"] = map[string]interface{}{
			"connected":  stats.Connected,
			"subscribed": stats.Subscribed,
			"frames":     stats.FramesReceived,
			"reconnects": stats.Reconnects,
		}
		if !stats.Connected {
			health.Status = "degraded"
		}

		// Check registry
		health.Components["registry"] = map[string]interface{}{
			"instruments": registry.Len(),
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/instruments", func(w http.ResponseWriter, r *http.Request) {
		instruments := registry.Instruments()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":       len(instruments),
			"instruments": instruments,
		})
	})

	return mux
}
