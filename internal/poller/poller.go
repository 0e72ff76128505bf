package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quotegather/yahoo-data/internal/market"
	"github.com/quotegather/yahoo-data/internal/yahoo"
)

// BarHandler receives assembled bars for one symbol.
type BarHandler interface {
	HandleBars(symbol string, bars []yahoo.Quote) error
}

// BarHandlerFunc is a function adapter for BarHandler.
type BarHandlerFunc func(symbol string, bars []yahoo.Quote) error

func (f BarHandlerFunc) HandleBars(symbol string, bars []yahoo.Quote) error {
	return f(symbol, bars)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Poll interval (default: 15m)
	Concurrency int           // Max concurrent requests (default: 4)
	Timeout     time.Duration // Per-request timeout (default: 30s)
	BarInterval string        // Chart interval, e.g. "1d"
	BarRange    string        // Chart range, e.g. "1mo"
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Minute,
		Concurrency: 4,
		Timeout:     30 * time.Second,
		BarInterval: "1d",
		BarRange:    "1mo",
	}
}

// Poller periodically fetches chart data for every tracked symbol.
type Poller struct {
	cfg      Config
	client   *yahoo.Client
	registry *market.Registry
	handler  BarHandler
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, client *yahoo.Client, registry *market.Registry, handler BarHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:      cfg,
		client:   client,
		registry: registry,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("chart poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
		"bar_interval", p.cfg.BarInterval,
		"bar_range", p.cfg.BarRange,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("chart poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollAll()
		}
	}
}

// pollAll fetches charts for all tracked symbols with bounded concurrency.
func (p *Poller) pollAll() {
	start := time.Now()

	symbols := p.registry.Symbols()
	if len(symbols) == 0 {
		p.logger.Debug("no symbols to poll")
		return
	}

	var fetched, errors atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.Concurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			select {
			case <-p.ctx.Done():
				return nil
			default:
			}

			if err := p.pollSymbol(symbol); err != nil {
				p.logger.Warn("failed to poll symbol",
					"symbol", symbol,
					"err", err,
				)
				errors.Add(1)
				return nil
			}

			fetched.Add(1)
			return nil
		})
	}

	g.Wait()

	p.logger.Info("poll cycle complete",
		"symbols", len(symbols),
		"fetched", fetched.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// pollSymbol fetches and handles a single symbol's chart.
func (p *Poller) pollSymbol(symbol string) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	resp, err := p.client.GetQuoteRange(ctx, symbol, p.cfg.BarInterval, p.cfg.BarRange)
	if err != nil {
		return err
	}

	meta, err := resp.Metadata()
	if err == nil {
		p.registry.Enrich(symbol, meta)
	}

	bars, err := resp.Quotes()
	if err != nil {
		return err
	}

	if p.handler != nil {
		if err := p.handler.HandleBars(symbol, bars); err != nil {
			return err
		}
	}

	return nil
}
