// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ChunkAPI: Chunk reads and mutations against the metatext backend
//   - SelectionStore: Local "last active chunk" persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SessionAPI: Backend chunk-session persistence. Only used when a
//     user is authenticated; the local SelectionStore covers anonymous use.
//   - CompressionAPI: Compression listing/preview/save. Without it, the
//     compression tooling is disabled.
//   - CurrentUserProvider: Authentication state. Without it, the client
//     behaves as anonymous.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
