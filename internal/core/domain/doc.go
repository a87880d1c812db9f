// Package domain defines the core business entities for Planora.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentRecord: Registry entry tracking an ingested source document
//   - SyncOutcome: Statistics of one reconciliation run
//   - Chunk: A retrieved excerpt scored by the external index
//   - DrawingObject: A geometric object from the client session
//   - GuardResult: Outcome of a deterministic pre-answer guard
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
