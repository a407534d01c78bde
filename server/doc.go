// Package server exposes the HTTP surface: credential exchange, the
// protected-route middleware with sliding token refresh, account linking
// and the ledger endpoints.
package server
