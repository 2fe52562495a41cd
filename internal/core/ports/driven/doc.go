// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: documents and their chunk text
//   - HistoryStore: per-owner conversation histories
//   - EmbeddingService: turns text into fixed-dimension vectors
//   - VectorIndex: exact nearest-neighbour search over one document's vectors
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil and the application degrades:
//
//   - LLMService: without it, answering, summaries and entity graphs fail
//     with domain.ErrLLMUnavailable while ingestion and history keep working.
//   - ShareStore: without it, answer sharing is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
