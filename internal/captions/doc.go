// Package captions converts editorial blocks into frame-accurate display
// windows and answers per-frame "which caption is showing" queries.
//
// With transcription timing each window is shifted by a perceptual lead and
// lag and separated from punch blocks by short pauses. Without timing, blocks
// share the narration span evenly. Windows never overlap, so lookups are a
// binary search over end frames.
package captions
