package testsupport

import (
	"path/filepath"
	"testing"

	"reeltime/internal/config"
)

// ConfigOption adjusts a config built by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns default settings rooted in a fresh temp directory, with
// debug logging. Options run last; the result is not validated, so tests can
// build deliberately broken configs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Logging.Level = "debug"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) ConfigOption {
	return func(c *config.Config) { c.Jobs.Concurrency = n }
}

// WithClaimBatch sets how many jobs a worker claims per round.
func WithClaimBatch(n int) ConfigOption {
	return func(c *config.Config) { c.Jobs.ClaimBatch = n }
}

// WithCrossfade overrides the scene cross-fade length.
func WithCrossfade(frames int) ConfigOption {
	return func(c *config.Config) { c.Scenes.CrossfadeFrames = frames }
}

// BaseDir returns the temp directory behind a config from NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
