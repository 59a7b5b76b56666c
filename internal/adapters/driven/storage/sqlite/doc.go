// Package sqlite provides the SQLite-backed article store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Articles loaded from the dataset are
// kept here until ingestion turns them into chunks for the vector index.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files,
// and every up migration records its own version in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.wikichat/data/articles.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
