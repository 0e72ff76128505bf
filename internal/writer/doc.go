// Package writer implements batch writers for market data.
//
// Writers:
//   - Bar writer (chart bars from the poller)
//   - Tick writer (live prices from the streamer router)
//
// All writers use append-only semantics (never update, only insert).
// Duplicate rows are deduplicated with ON CONFLICT DO NOTHING on the
// (ticker, timestamp) key.
package writer
