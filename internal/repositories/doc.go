// Package repositories implements SQLite persistence for the job history.
//
// Key Implementations:
//   - [JobRepository] : processing requests with status tracking and per-step timings
//   - [JobRecorderAdapter] : plugs JobRepository into the request processor
//
// Jobs are soft deleted via deleted_at and excluded from queries by default.
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
