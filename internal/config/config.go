package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Scenes contains the fixed scene-length policy.
type Scenes struct {
	FPS                 int     `toml:"fps"`
	HeroSeconds         float64 `toml:"hero_seconds"`
	MinContentSeconds   float64 `toml:"min_content_seconds"`
	OutroSeconds        float64 `toml:"outro_seconds"`
	CrossfadeFrames     int     `toml:"crossfade_frames"`
	BreathingRoomFrames int     `toml:"breathing_room_frames"`
}

// Narration contains duration reconciliation limits.
type Narration struct {
	// MaxShortSeconds is the platform's maximum short-form length.
	MaxShortSeconds float64 `toml:"max_short_seconds"`
	// DiscrepancyThreshold is the transcribed/estimated ratio that triggers
	// a correction note. Default: 1.5
	DiscrepancyThreshold float64 `toml:"discrepancy_threshold"`
}

// Captions contains block grouping, classification and timing settings.
type Captions struct {
	LeadSeconds            float64 `toml:"lead_seconds"`
	LagSeconds             float64 `toml:"lag_seconds"`
	PauseFramesBeforePunch int     `toml:"pause_frames_before_punch"`
	PauseFramesAfterPunch  int     `toml:"pause_frames_after_punch"`
	MaxGroupGapSeconds     float64 `toml:"max_group_gap_seconds"`
	MaxWordsForGrouping    int     `toml:"max_words_for_grouping"`
	MaxCombinedChars       int     `toml:"max_combined_chars"`
	MinBlockDurationFrames int     `toml:"min_block_duration_frames"`
	MaxWordsForPunch       int     `toml:"max_words_for_punch"`
	FadeFrames             int     `toml:"fade_frames"`
}

// Audio contains music-bed and narration gain settings.
type Audio struct {
	HeroVolume         float64 `toml:"hero_volume"`
	ContentVolume      float64 `toml:"content_volume"`
	OutroVolume        float64 `toml:"outro_volume"`
	NarrationVolume    float64 `toml:"narration_volume"`
	FadeOutFrames      int     `toml:"fade_out_frames"`
	VoiceFadeoutFrames int     `toml:"voice_fadeout_frames"`
}

// Jobs contains batch planning settings.
type Jobs struct {
	Concurrency int `toml:"concurrency"`
	ClaimBatch  int `toml:"claim_batch"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reeltime.
//
// Configuration sections by subsystem:
//   - Paths: state (job database, locks) and log directories
//   - Scenes: hero/content/outro lengths, cross-fade and breathing room
//   - Narration: platform cap and discrepancy threshold
//   - Captions: grouping limits, weights, lead/lag and punch pauses
//   - Audio: section volumes and fades
//   - Jobs: batch worker concurrency
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scenes    Scenes    `toml:"scenes"`
	Narration Narration `toml:"narration"`
	Captions  Captions  `toml:"captions"`
	Audio     Audio     `toml:"audio"`
	Jobs      Jobs      `toml:"jobs"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path, or searches the default locations when path
// is empty. It returns the config, the file it came from (or would have) and
// whether that file existed. Missing files yield validated defaults.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath picks the explicit path, else the first existing file of
// the user config and ./reeltime.toml, else the user config location.
func resolveConfigPath(path string) (string, bool, error) {
	var candidates []string
	if path != "" {
		candidates = []string{path}
	} else {
		candidates = []string{defaultConfigPath, "reeltime.toml"}
	}

	var first string
	for _, candidate := range candidates {
		expanded, err := expandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if first == "" {
			first = expanded
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return first, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobsDBPath returns the SQLite database location for render jobs.
func (c *Config) JobsDBPath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// WorkerLockPath returns the lock file guarding the batch worker.
func (c *Config) WorkerLockPath() string {
	return filepath.Join(c.Paths.StateDir, "worker.lock")
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath resolves "~" and relative paths to an absolute, cleaned path.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
