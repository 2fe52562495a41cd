// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: extracted text owned by a single user
//   - Chunk: a bounded slice of a document, the unit of retrieval
//   - Turn: one user or assistant message in a conversation history
//   - Model and PromptStyle: the fixed tables that gate answering
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
