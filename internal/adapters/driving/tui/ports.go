// Package tui provides the interactive chunk workspace for metatext.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace coordinates the chunk list for the open metatext.
	Workspace driving.ChunkWorkspace

	// Compressions manages chunk compressions and their styles.
	Compressions driving.CompressionService

	// Auth reports the signed-in identity. Optional; when nil the
	// status bar shows anonymous use.
	Auth driving.AuthService
}

// Validate ensures all required ports are set.
// Returns an error if a required port is nil.
func (p *Ports) Validate() error {
	if p.Workspace == nil {
		return ErrMissingWorkspace
	}
	if p.Compressions == nil {
		return ErrMissingCompressionService
	}
	return nil
}
