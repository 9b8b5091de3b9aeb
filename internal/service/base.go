// Package service resolves LP tokens to pools, reads their state and runs
// simulations and instruction building on top of the pool dispatcher.
package service

import "log/slog"

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger *slog.Logger
}
