// Package domain defines the core business entities for the metatext client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - MetaText: A user-curated derivative of a source document
//   - Chunk: A contiguous, annotatable span of a metatext
//   - ChunkCompression: An alternate AI-generated rendering of a chunk
//   - Selection: The active chunk and tool tabs for an open metatext
//   - ChunkSession: A backend-stored "last active chunk" record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
