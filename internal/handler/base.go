// Package handler exposes the pool service over HTTP: pool lookup,
// simulations and instruction building.
package handler

import "log/slog"

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}
