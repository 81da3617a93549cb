// Package services defines shared utilities consumed by the planning engine,
// the job worker and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (rejected request vs. unexpected failure) without string
//     matching.
package services
