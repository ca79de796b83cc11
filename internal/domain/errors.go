package domain

import "errors"

// Error taxonomy for store and manager operations. Callers branch with
// errors.Is; everything else is wrapped context.
var (
	// ErrStorageUnavailable means the root folder could not be found or
	// created. Fatal to initialization, never retried.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotAuthenticated means a call was attempted without a valid
	// token. Fatal to that operation only, not to the session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnsupportedFileType rejects an upload before any network call.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrNotFound maps the provider's 404 for an item or the root folder.
	ErrNotFound = errors.New("not found")

	// ErrOperationInFlight is returned when a workflow is invoked while
	// another one holds the single-flight gate.
	ErrOperationInFlight = errors.New("another operation is in flight")
)
