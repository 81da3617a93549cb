// Package jobs persists render-plan jobs in SQLite for batch video
// generation.
//
// A job carries one engine request, moves from pending through planning to
// planned, rejected or failed, and keeps the resulting plan as JSON for the
// rendering layer. The Store wraps a WAL-mode database with busy-retry
// helpers so the CLI and a worker can share it.
//
// The schema is versioned; a version mismatch asks the operator to clear the
// database rather than migrating in place.
package jobs
