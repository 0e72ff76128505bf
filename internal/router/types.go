package router

import (
	"time"

	"github.com/quotegather/yahoo-data/internal/stream"
)

// RouterConfig holds configuration for the Message Router.
type RouterConfig struct {
	// Output buffer size
	TickBufferSize int // Default: 5000
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		TickBufferSize: 5000,
	}
}

// PriceMsg is a decoded live price update routed to the tick writer.
type PriceMsg struct {
	Symbol        string
	Price         float64
	Currency      string
	Exchange      string
	MarketHours   stream.MarketHours
	ChangePercent float64
	Change        float64
	DayVolume     int64
	DayHigh       float64
	DayLow        float64
	Bid           float64
	BidSize       int64
	Ask           float64
	AskSize       int64
	ExchangeTs    int64     // Milliseconds
	ReceivedAt    time.Time // Local timestamp when the frame arrived
}

// BarMsg is an assembled chart bar delivered by the poller to the bar writer.
type BarMsg struct {
	Ticker    string
	Timestamp int64 // Unix seconds, start of the bar
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    uint64
}

// frameEnvelope is the JSON wrapper around pricing frames on the
// version=2 streamer. Version 1 sends the bare base64 payload instead.
type frameEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
