package mcp

import (
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace coordinates the chunk list for the open metatext.
	Workspace driving.ChunkWorkspace

	// Compressions manages chunk compressions. Optional; the
	// compression tool and resource fail gracefully without it.
	Compressions driving.CompressionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workspace == nil {
		return ErrMissingWorkspace
	}
	return nil
}
