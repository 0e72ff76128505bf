// streamtest connects to the Yahoo streamer and prints decoded live prices.
// Usage: go run ./cmd/streamtest -symbols AAPL,MSFT,BTC-USD
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quotegather/yahoo-data/internal/router"
	"github.com/quotegather/yahoo-data/internal/stream"
)

func main() {
	symbolsFlag := flag.String("symbols", "AAPL,MSFT", "comma-separated symbols to subscribe")
	url := flag.String("url", "wss://streamer.finance.yahoo.com/?version=2", "streamer URL")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	symbols := strings.Split(*symbolsFlag, ",")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Create streamer manager
	mgrCfg := stream.DefaultManagerConfig()
	mgrCfg.URL = *url

	mgr := stream.NewManager(mgrCfg, symbols, logger)

	// Create Router using the streamer's message channel
	rtr := router.NewRouter(router.DefaultRouterConfig(), mgr.Messages(), logger)

	// Start streamer (subscribes to the configured symbols)
	logger.Info("starting streamer", "symbols", symbols)
	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start streamer", "error", err)
		os.Exit(1)
	}

	// Start Router
	logger.Info("starting router")
	if err := rtr.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}

	// Start console printer
	go printPrices(ctx, rtr.Buffers().Tick, *verbose)

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				routerStats := rtr.Stats()
				mgrStats := mgr.Stats()
				logger.Info("stats",
					"connected", mgrStats.Connected,
					"subscribed", mgrStats.Subscribed,
					"frames_received", routerStats.FramesReceived,
					"prices_routed", routerStats.PricesRouted,
					"parse_errors", routerStats.ParseErrors,
					"tick_buf", routerStats.TickBuffer.Count,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	mgr.Stop(shutdownCtx)
	rtr.Stop(shutdownCtx)

	logger.Info("shutdown complete")
}

func printPrices(ctx context.Context, buf *router.GrowableBuffer[router.PriceMsg], verbose bool) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, ok := buf.TryReceive()
			if !ok {
				time.Sleep(10 * time.Millisecond)
				continue
			}

			if verbose {
				data, _ := json.MarshalIndent(msg, "", "  ")
				fmt.Printf("[PRICE] %s\n", data)
			} else {
				fmt.Printf("[PRICE] symbol=%s price=%.4f change=%+.2f%% vol=%d session=%s\n",
					msg.Symbol, msg.Price, msg.ChangePercent, msg.DayVolume, msg.MarketHours)
			}
		}
	}
}
