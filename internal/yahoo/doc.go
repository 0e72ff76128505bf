// Package yahoo provides a client for the undocumented Yahoo Finance JSON
// endpoints.
//
// Unauthenticated endpoints:
//   - Chart (quote history): https://query1.finance.yahoo.com/v8/finance/chart
//   - Ticker search: https://query2.finance.yahoo.com/v1/finance/search
//
// Authenticated endpoints (cookie + crumb handshake):
//   - Quote summary: https://query2.finance.yahoo.com/v10/finance/quoteSummary
//   - Financial events: https://query1.finance.yahoo.com/v1/finance/visualization
//   - Option chains: https://query2.finance.yahoo.com/v7/finance/options
//
// Authentication is opportunistic: a session cookie is obtained from
// fc.yahoo.com and a crumb token from v1/test/getcrumb the first time an
// authenticated call is made. Each invalidation signal (rejected cookie,
// rejected crumb, unauthorized error code) is recovered once per call;
// a second failure of the same kind is terminal.
package yahoo
