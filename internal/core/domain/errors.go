package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNoMetaTextOpen indicates no metatext is loaded in the workspace.
	ErrNoMetaTextOpen = errors.New("no metatext open")

	// ErrMutationInFlight indicates a structural mutation (split or merge)
	// is already pending for the open chunk list. At most one structural
	// mutation may be in flight at a time.
	ErrMutationInFlight = errors.New("mutation already in flight")

	// ErrMalformedResponse indicates the backend returned a payload that
	// does not match the operation's contract (e.g. a split that did not
	// return exactly two chunks).
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrNoNeighbour indicates a merge was requested for a chunk with no
	// following chunk. Only adjacent chunks can merge.
	ErrNoNeighbour = errors.New("chunk has no following neighbour")

	// ErrNotAuthenticated indicates an operation requires a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrWorkspaceClosed indicates the workspace has been closed and can
	// no longer serve operations.
	ErrWorkspaceClosed = errors.New("workspace closed")
)
