package service

import "errors"

// Error kinds surfaced by Remote implementations. Backends wrap them with
// context; callers match with errors.Is.
var (
	// ErrAuth means the credential is missing, invalid or expired and
	// could not be refreshed.
	ErrAuth = errors.New("not authorized")

	// ErrRemoteUnavailable means the service could not be reached or
	// failed server-side.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrNotFound means the addressed entity does not exist remotely.
	ErrNotFound = errors.New("not found")
)
