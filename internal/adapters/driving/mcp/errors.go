// Package mcp provides an MCP (Model Context Protocol) server adapter
// for metatext. It lets AI assistants open a metatext, read its chunks,
// and drive annotations, splits, merges, and compressions.
package mcp

import "errors"

// ErrMissingWorkspace is returned when the chunk workspace is not provided.
var ErrMissingWorkspace = errors.New("mcp: chunk workspace is required")

// ErrNoMetaTextOpen is returned when a chunk operation runs before open_metatext.
var ErrNoMetaTextOpen = errors.New("mcp: no metatext open; call open_metatext first")
