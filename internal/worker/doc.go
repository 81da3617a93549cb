// Package worker drains pending render jobs.
//
// A Worker holds an exclusive file lock in the state directory so only one
// drainer touches the jobs database at a time, claims pending jobs in
// batches, plans them on a bounded goroutine pool and records each outcome
// (planned, rejected or failed). Jobs interrupted by cancellation are
// returned to pending.
package worker
