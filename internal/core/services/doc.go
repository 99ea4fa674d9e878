// Package services implements the driving ports: the chunk workspace,
// the session bridge, the debounced field updater, and the compression
// service.
//
// Services hold the client-side state for one open metatext and talk to
// infrastructure only through driven ports, so they can be exercised in
// tests with in-memory adapters. Each service is explicitly constructed
// and carries its own lifecycle; there are no package-level singletons.
package services
