package writer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// batchSender is the slice of pgxpool.Pool the writers need.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 5 * time.Second,
	}
}

// barRow represents a row to be inserted into the bars table.
type barRow struct {
	Ticker   string
	Ts       int64 // Unix seconds, start of the bar
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// tickRow represents a row to be inserted into the ticks table.
type tickRow struct {
	ExchangeTs    int64 // Milliseconds
	ReceivedAt    int64 // Microseconds
	Ticker        string
	Price         float64
	Change        float64
	ChangePercent float64
	DayVolume     int64
	DayHigh       float64
	DayLow        float64
	Bid           float64
	Ask           float64
	MarketHours   int16
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
