package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quotegather/yahoo-data/internal/stream"
)

// Router decodes raw streamer frames and routes them to the tick writer.
type Router interface {
	// Start begins routing frames from the input channel.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the router.
	Stop(ctx context.Context) error

	// Buffers returns output buffers for writers to consume.
	Buffers() RouterBuffers

	// Stats returns current router statistics.
	Stats() RouterStats
}

// RouterBuffers provides access to output buffers for writers.
type RouterBuffers struct {
	Tick *GrowableBuffer[PriceMsg]
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	FramesReceived int64
	PricesRouted   int64
	ParseErrors    int64
	SkippedFrames  int64
	TickBuffer     BufferStats
}

// router is the internal implementation.
type router struct {
	cfg    RouterConfig
	logger *slog.Logger

	// Input from the streamer
	input <-chan stream.RawMessage

	// Output to the tick writer
	tickBuf *GrowableBuffer[PriceMsg]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Stats
	mu          sync.RWMutex
	received    int64
	routed      int64
	parseErrors int64
	skipped     int64
}

// NewRouter creates a new Message Router.
func NewRouter(cfg RouterConfig, input <-chan stream.RawMessage, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &router{
		cfg:     cfg,
		logger:  logger,
		input:   input,
		tickBuf: NewGrowableBuffer[PriceMsg](cfg.TickBufferSize),
	}
}

// Start begins routing frames.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started",
		"tick_buffer", r.cfg.TickBufferSize,
	)

	return nil
}

// Stop gracefully shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	r.logger.Info("stopping message router")

	if r.cancel != nil {
		r.cancel()
	}

	// Wait for goroutine to finish
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("message router stopped")
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
	}

	// Close output buffer
	r.tickBuf.Close()

	return nil
}

// Buffers returns output buffers for writers.
func (r *router) Buffers() RouterBuffers {
	return RouterBuffers{
		Tick: r.tickBuf,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RouterStats{
		FramesReceived: r.received,
		PricesRouted:   r.routed,
		ParseErrors:    r.parseErrors,
		SkippedFrames:  r.skipped,
		TickBuffer:     r.tickBuf.Stats(),
	}
}

// routeLoop is the main routing goroutine.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case raw, ok := <-r.input:
			if !ok {
				r.logger.Info("input channel closed")
				return
			}
			r.route(raw)
		}
	}
}

// route decodes and routes a single frame.
func (r *router) route(raw stream.RawMessage) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	payload, ok := r.extractPayload(raw.Data)
	if !ok {
		return
	}

	update, err := stream.DecodePricing(payload)
	if err != nil {
		r.logger.Warn("failed to decode pricing frame", "error", err)
		r.mu.Lock()
		r.parseErrors++
		r.mu.Unlock()
		return
	}

	sent := r.tickBuf.Send(r.transform(update, raw))

	if sent {
		r.mu.Lock()
		r.routed++
		r.mu.Unlock()
	}
}

// extractPayload unwraps the base64 pricing payload. The version=2
// streamer wraps it in a JSON envelope; version 1 sends it bare.
func (r *router) extractPayload(data []byte) ([]byte, bool) {
	var envelope frameEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Not JSON, assume a bare base64 frame
		return data, true
	}

	if envelope.Type != "pricing" || envelope.Message == "" {
		// Skip heartbeats and other control frames
		if envelope.Type != "heartbeat" {
			r.logger.Debug("skipping frame type", "type", envelope.Type)
		}
		r.mu.Lock()
		r.skipped++
		r.mu.Unlock()
		return nil, false
	}

	return []byte(envelope.Message), true
}

// transform converts a decoded update to a PriceMsg.
func (r *router) transform(u *stream.PricingUpdate, raw stream.RawMessage) PriceMsg {
	return PriceMsg{
		Symbol:        u.ID,
		Price:         u.Price,
		Currency:      u.Currency,
		Exchange:      u.Exchange,
		MarketHours:   u.MarketHours,
		ChangePercent: u.ChangePercent,
		Change:        u.Change,
		DayVolume:     u.DayVolume,
		DayHigh:       u.DayHigh,
		DayLow:        u.DayLow,
		Bid:           u.Bid,
		BidSize:       u.BidSize,
		Ask:           u.Ask,
		AskSize:       u.AskSize,
		ExchangeTs:    u.Time,
		ReceivedAt:    raw.ReceivedAt,
	}
}
