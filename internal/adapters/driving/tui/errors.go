package tui

import "errors"

// ErrMissingWorkspace is returned when the chunk workspace is not provided.
var ErrMissingWorkspace = errors.New("tui: chunk workspace is required")

// ErrMissingCompressionService is returned when the compression service is not provided.
var ErrMissingCompressionService = errors.New("tui: compression service is required")

// ErrInvalidMetaTextID is returned when the metatext identifier is not positive.
var ErrInvalidMetaTextID = errors.New("tui: metatext id must be positive")
