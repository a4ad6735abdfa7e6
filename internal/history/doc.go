// Package history records build runs in a small SQLite ledger.
//
// Each build inserts a row when it starts and completes it when it ends, so
// an interrupted build stays visible as "running". The ledger is
// informational: the pipeline never reads it back, and failures to write it
// are logged by callers rather than failing the build.
//
// The schema is embedded and versioned. A database created by a different
// schema version is rejected with ErrSchemaMismatch; the ledger is
// disposable, so the remedy is to delete the file.
package history
