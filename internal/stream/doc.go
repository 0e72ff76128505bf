// Package stream implements the live price streamer.
//
// The streamer:
//   - Maintains a single WebSocket connection to the Yahoo Finance streamer
//   - Subscribes to symbols with JSON {"subscribe": [...]} frames
//   - Decodes base64-wrapped binary pricing frames into PricingUpdate values
//   - Handles reconnection with exponential backoff and re-subscription
package stream
