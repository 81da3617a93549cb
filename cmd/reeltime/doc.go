// Package main hosts the reeltime CLI entrypoint and command graph.
//
// The Cobra command tree plans single render requests from a transcript or
// script, samples the resulting audio curves, and manages the persistent job
// store that batch video generation feeds. Planning itself lives in
// internal/engine; commands here only gather inputs and render output.
package main
