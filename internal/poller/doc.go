// Package poller implements the Chart Poller component.
//
// The Chart Poller:
//   - Polls the chart API on an interval for every tracked symbol
//   - Bounds concurrent requests with an errgroup limit
//   - Enriches the instrument registry from chart metadata
//   - Delivers assembled bars to a handler for persistence
package poller
