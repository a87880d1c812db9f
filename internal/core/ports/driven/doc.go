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
//   - DocumentRegistry: Durable record of what has been indexed
//   - DocumentSource: Enumerates and extracts source documents
//   - ExternalIndex: The derived search index (add/delete/query)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings for index adapters
//     that need them. Without it, such adapters are disabled.
//   - Generator: The generative model. Without it, only guard-produced
//     deterministic answers are available.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
