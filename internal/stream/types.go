package stream

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// RawMessage is a message from the streamer to the Message Router.
type RawMessage struct {
	Data       []byte    // Raw frame bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when the client received the frame
}

// subscribeFrame is the control frame that registers symbols with the streamer.
type subscribeFrame struct {
	Subscribe []string `json:"subscribe"`
}

// unsubscribeFrame removes symbols from the active subscription.
type unsubscribeFrame struct {
	Unsubscribe []string `json:"unsubscribe"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., wss://streamer.finance.yahoo.com/?version=2)
	PingInterval time.Duration // Keepalive ping cadence
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:          "wss://streamer.finance.yahoo.com/?version=2",
		PingInterval: 15 * time.Second,
		PingTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

// ManagerConfig configures the streamer manager.
type ManagerConfig struct {
	URL               string        // WebSocket URL
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
	PingInterval      time.Duration // Forwarded to the client
	PingTimeout       time.Duration // Forwarded to the client
	MessageBufferSize int           // Buffer size for output message channel
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		URL:               "wss://streamer.finance.yahoo.com/?version=2",
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
		PingInterval:      15 * time.Second,
		PingTimeout:       30 * time.Second,
		MessageBufferSize: 10000,
	}
}
