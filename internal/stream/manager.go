package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Manager owns the streamer connection and the active subscription set.
type Manager interface {
	// Start connects and subscribes to the initial symbol set.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the connection.
	Stop(ctx context.Context) error

	// Subscribe adds symbols to the subscription.
	Subscribe(symbols ...string) error

	// Unsubscribe removes symbols from the subscription.
	Unsubscribe(symbols ...string) error

	// Messages returns the stream of raw frames for the router.
	Messages() <-chan RawMessage

	// Stats returns current manager statistics.
	Stats() ManagerStats
}

// ManagerStats contains runtime statistics.
type ManagerStats struct {
	FramesReceived int64
	FramesDropped  int64
	Reconnects     int64
	Subscribed     int
	Connected      bool
}

// manager is the internal implementation.
type manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	client Client

	// Active subscription set, restored after reconnects
	symbolsMu sync.Mutex
	symbols   map[string]struct{}

	// Output to the Message Router
	output chan RawMessage

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Stats
	mu         sync.RWMutex
	received   int64
	dropped    int64
	reconnects int64
}

// NewManager creates a streamer manager for the given symbols.
func NewManager(cfg ManagerConfig, symbols []string, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}

	return &manager{
		cfg:     cfg,
		logger:  logger,
		symbols: set,
		output:  make(chan RawMessage, cfg.MessageBufferSize),
	}
}

// Start connects and subscribes to the configured symbols.
func (m *manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	first := NewClient(m.clientConfig(), m.logger)
	if err := first.Connect(m.ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.client = first
	m.mu.Unlock()

	if err := m.sendSubscribe(m.symbolList()); err != nil {
		m.logger.Warn("initial subscribe failed", "error", err)
		// Continue anyway - will retry on reconnection
	}

	m.wg.Add(1)
	go m.readLoop(first)

	m.logger.Info("streamer started",
		"url", m.cfg.URL,
		"symbols", len(m.symbols),
	)
	return nil
}

// Stop gracefully shuts down the manager.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping streamer")

	if m.cancel != nil {
		m.cancel()
	}
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client != nil {
		client.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// No senders left, safe to close.
		close(m.output)
		m.logger.Info("streamer stopped")
	case <-ctx.Done():
		// A read loop may still hold a send; leave the channel open.
		m.logger.Warn("streamer stop timed out")
	}

	return nil
}

// Subscribe adds symbols to the active subscription.
func (m *manager) Subscribe(symbols ...string) error {
	m.symbolsMu.Lock()
	added := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := m.symbols[s]; !ok {
			m.symbols[s] = struct{}{}
			added = append(added, s)
		}
	}
	m.symbolsMu.Unlock()

	if len(added) == 0 {
		return nil
	}
	return m.sendSubscribe(added)
}

// Unsubscribe removes symbols from the active subscription.
func (m *manager) Unsubscribe(symbols ...string) error {
	m.symbolsMu.Lock()
	removed := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := m.symbols[s]; ok {
			delete(m.symbols, s)
			removed = append(removed, s)
		}
	}
	m.symbolsMu.Unlock()

	if len(removed) == 0 {
		return nil
	}

	data, err := json.Marshal(unsubscribeFrame{Unsubscribe: removed})
	if err != nil {
		return err
	}

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Send(data)
}

// Messages returns the output channel.
func (m *manager) Messages() <-chan RawMessage {
	return m.output
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.symbolsMu.Lock()
	subscribed := len(m.symbols)
	m.symbolsMu.Unlock()

	client := m.client
	connected := client != nil && client.IsConnected()

	return ManagerStats{
		FramesReceived: m.received,
		FramesDropped:  m.dropped,
		Reconnects:     m.reconnects,
		Subscribed:     subscribed,
		Connected:      connected,
	}
}

// readLoop forwards frames to the router and triggers reconnects.
func (m *manager) readLoop(client Client) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case err := <-client.Errors():
			m.logger.Warn("streamer connection error", "error", err)
			m.wg.Add(1)
			go m.reconnect()
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}

			m.mu.Lock()
			m.received++
			m.mu.Unlock()

			raw := RawMessage{
				Data:       msg.Data,
				ReceivedAt: msg.ReceivedAt,
			}

			select {
			case m.output <- raw:
			case <-m.ctx.Done():
				return
			default:
				m.mu.Lock()
				m.dropped++
				m.mu.Unlock()
				m.logger.Warn("frame buffer full, dropping")
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff.
func (m *manager) reconnect() {
	defer m.wg.Done()

	wait := m.cfg.ReconnectBaseWait
	maxWait := m.cfg.ReconnectMaxWait

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-time.After(wait):
		}

		m.logger.Info("attempting reconnection", "wait", wait)

		next := NewClient(m.clientConfig(), m.logger)
		m.mu.Lock()
		old := m.client
		m.client = next
		m.mu.Unlock()
		old.Close()

		if err := next.Connect(m.ctx); err != nil {
			m.logger.Warn("reconnection failed", "error", err)

			// Exponential backoff
			wait *= 2
			if wait > maxWait {
				wait = maxWait
			}
			continue
		}

		m.mu.Lock()
		m.reconnects++
		m.mu.Unlock()

		m.logger.Info("reconnected")

		// Re-subscribe the full symbol set
		if err := m.sendSubscribe(m.symbolList()); err != nil {
			m.logger.Warn("re-subscribe failed", "error", err)
		}

		// Restart read loop
		m.wg.Add(1)
		go m.readLoop(next)

		return
	}
}

// sendSubscribe sends a subscribe frame for the given symbols.
func (m *manager) sendSubscribe(symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	data, err := json.Marshal(subscribeFrame{Subscribe: symbols})
	if err != nil {
		return err
	}

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return ErrNotConnected
	}
	return client.Send(data)
}

// symbolList snapshots the subscription set in stable order.
func (m *manager) symbolList() []string {
	m.symbolsMu.Lock()
	defer m.symbolsMu.Unlock()

	list := make([]string, 0, len(m.symbols))
	for s := range m.symbols {
		list = append(list, s)
	}
	sort.Strings(list)
	return list
}

func (m *manager) clientConfig() ClientConfig {
	return ClientConfig{
		URL:          m.cfg.URL,
		PingInterval: m.cfg.PingInterval,
		PingTimeout:  m.cfg.PingTimeout,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}
