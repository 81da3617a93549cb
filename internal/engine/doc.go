// Package engine plans one narrated short: it reconciles the narration
// duration, builds editorial caption blocks, assembles the scene timeline,
// resolves caption windows against it and exposes the music and narration
// gain curves.
//
// An Engine is constructed once from an immutable Policy; New rejects
// policies that cannot yield a valid timeline, so Plan only fails on
// malformed requests. Recoverable conditions such as a missing transcription
// or a capped duration are reported as Notes next to the Result instead of
// errors. Plan is pure: the same Request always yields the same Result, and
// an Engine is safe for concurrent use.
package engine
