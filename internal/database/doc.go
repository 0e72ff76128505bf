// Package database provides connection pool management for PostgreSQL.
//
// Each gatherer maintains local storage: daily bars from the chart poller,
// live ticks from the streamer, and the instrument registry snapshot.
package database
