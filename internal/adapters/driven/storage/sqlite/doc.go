// Package sqlite provides a SQLite-backed implementation of the storage ports.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds without
// CGO. One database connection serves three stores:
//
//   - DocumentStore: documents and their chunk sets
//   - HistoryStore: per-owner conversation history
//   - ShareStore: shared answer tokens
//
// # Schema
//
// The schema is managed by numbered migrations embedded from migrations/.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default the database is stored at ~/.docqa/data/docqa.db.
//
// # Thread Safety
//
// All operations are safe for concurrent use. History appends for one owner
// are serialized in-process and run inside a transaction, so the turns of one
// exchange are always adjacent.
package sqlite
