// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/focus"
	"todo/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, ambiguous).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3

	// Offline indicates a cache-only request with nothing cached.
	Offline = 4
)

// For maps an error returned by the sync core or a backend to an exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, cache.ErrNoCacheAvailable):
		return Offline
	case errors.Is(err, service.ErrAuth):
		return AuthError
	case errors.Is(err, focus.ErrAmbiguousSelection),
		errors.Is(err, dates.ErrInvalidDateExpression),
		errors.Is(err, service.ErrNotFound):
		return UserError
	default:
		return BackendError
	}
}
