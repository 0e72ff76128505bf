package market

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/quotegather/yahoo-data/internal/yahoo"
)

// Instrument is a tracked symbol plus the chart metadata learned about it.
type Instrument struct {
	Symbol         string
	Currency       string
	Exchange       string
	InstrumentType string
	Timezone       string
	EnrichedAt     time.Time // Zero until the first successful chart fetch
}

// Enriched reports whether chart metadata has been recorded.
func (i Instrument) Enriched() bool {
	return !i.EnrichedAt.IsZero()
}

// Registry tracks the instruments polled and streamed by this instance.
// Symbols come from configuration; metadata is filled in from the first
// successful chart response for each symbol.
type Registry struct {
	logger *slog.Logger

	mu          sync.RWMutex
	instruments map[string]Instrument
}

// NewRegistry creates a registry seeded with the configured symbols.
func NewRegistry(symbols []string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	instruments := make(map[string]Instrument, len(symbols))
	for _, s := range symbols {
		instruments[s] = Instrument{Symbol: s}
	}

	return &Registry{
		logger:      logger,
		instruments: instruments,
	}
}

// Symbols returns the tracked symbols in stable order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := make([]string, 0, len(r.instruments))
	for s := range r.instruments {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Get returns the instrument for a symbol.
func (r *Registry) Get(symbol string) (Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instruments[symbol]
	return inst, ok
}

// Instruments returns all tracked instruments in stable order.
func (r *Registry) Instruments() []Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Instrument, 0, len(r.instruments))
	for _, inst := range r.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of tracked instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}

// Enrich records chart metadata for a tracked symbol. Returns true on the
// first enrichment; later calls refresh the fields without reporting.
// Metadata for symbols not in the registry is ignored.
func (r *Registry) Enrich(symbol string, meta *yahoo.Metadata) bool {
	if meta == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instruments[symbol]
	if !ok {
		return false
	}

	first := !inst.Enriched()

	if meta.Currency != nil {
		inst.Currency = *meta.Currency
	}
	inst.Exchange = meta.ExchangeName
	inst.InstrumentType = meta.InstrumentType
	inst.Timezone = meta.ExchangeTimezoneName
	inst.EnrichedAt = time.Now()
	r.instruments[symbol] = inst

	if first {
		r.logger.Info("instrument enriched",
			"symbol", symbol,
			"currency", inst.Currency,
			"exchange", inst.Exchange,
			"type", inst.InstrumentType,
		)
	}

	return first
}
