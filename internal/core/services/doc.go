// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion chunks and stores text; question answering retrieves from a
// per-document vector index that IndexManager builds on demand, asks the
// configured model and records the exchange in the owner's history.
package services
