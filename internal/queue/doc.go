// Package queue persists conversion jobs in SQLite and exposes the lifecycle
// transitions the pipeline drives them through.
//
// The Store manages the database connection, schema initialization, and the
// status transitions of the public job state machine: pending -> running ->
// completed/failed, plus the explicit reprocess reset back to pending. Claim
// and reset operations are conditional single-statement updates so no job can
// be double-claimed or re-armed mid-run even across processes.
//
// Treat this package as the single source of truth for job record semantics;
// when you add fields, update schema.sql and bump schemaVersion.
package queue
