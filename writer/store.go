// Package writer persists poll snapshots. The store is append-only: each
// poll appends one batch of rows, corrections happen via new rows in later
// polls, never edits. Two implementations exist: an S3-backed parquet store
// for deployments and an in-memory store for tests and dry runs.
package writer
