package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reeltime/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("REELTIME_LOG_LEVEL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "reeltime")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.JobsDBPath() != filepath.Join(wantState, "jobs.db") {
		t.Fatalf("unexpected jobs db path: %q", cfg.JobsDBPath())
	}
	if cfg.Scenes.FPS != 30 || cfg.Scenes.HeroSeconds != 8 || cfg.Scenes.MinContentSeconds != 37 {
		t.Fatalf("unexpected scene defaults: %+v", cfg.Scenes)
	}
	if cfg.Scenes.CrossfadeFrames != 30 || cfg.Scenes.BreathingRoomFrames != 45 {
		t.Fatalf("unexpected transition defaults: %+v", cfg.Scenes)
	}
	if cfg.Narration.MaxShortSeconds != 60 || cfg.Narration.DiscrepancyThreshold != 1.5 {
		t.Fatalf("unexpected narration defaults: %+v", cfg.Narration)
	}
	if cfg.Captions.MaxCombinedChars != 50 || cfg.Captions.MaxWordsForGrouping != 7 {
		t.Fatalf("unexpected caption defaults: %+v", cfg.Captions)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reeltime.toml")
	t.Setenv("REELTIME_LOG_LEVEL", "")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Scenes struct {
			HeroSeconds     float64 `toml:"hero_seconds"`
			CrossfadeFrames int     `toml:"crossfade_frames"`
		} `toml:"scenes"`
		Audio struct {
			ContentVolume float64 `toml:"content_volume"`
		} `toml:"audio"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Scenes.HeroSeconds = 6
	custom.Scenes.CrossfadeFrames = 15
	custom.Audio.ContentVolume = 0.25
	custom.Logging.Format = " JSON "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Scenes.HeroSeconds != 6 || cfg.Scenes.CrossfadeFrames != 15 {
		t.Fatalf("expected scene overrides, got %+v", cfg.Scenes)
	}
	if cfg.Scenes.OutroSeconds != 5 {
		t.Fatalf("expected untouched outro default, got %v", cfg.Scenes.OutroSeconds)
	}
	if cfg.Audio.ContentVolume != 0.25 {
		t.Fatalf("expected content volume override, got %v", cfg.Audio.ContentVolume)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "reeltime.toml")
	if err := os.WriteFile(configPath, []byte("[scenes]\nhero_secs = 4\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestEnvVarOverridesLogLevel(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "reeltime.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REELTIME_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level from env, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[scenes]") {
		t.Fatalf("sample config missing scenes section: %s", contents)
	}

	// The sample documents the defaults, so decoding it must reproduce them.
	cfg := config.Config{}
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	def := config.Default()
	if cfg.Scenes != def.Scenes {
		t.Fatalf("sample scenes %+v differ from defaults %+v", cfg.Scenes, def.Scenes)
	}
	if cfg.Captions != def.Captions {
		t.Fatalf("sample captions %+v differ from defaults %+v", cfg.Captions, def.Captions)
	}
	if cfg.Audio != def.Audio {
		t.Fatalf("sample audio %+v differ from defaults %+v", cfg.Audio, def.Audio)
	}
	if cfg.Narration != def.Narration {
		t.Fatalf("sample narration %+v differ from defaults %+v", cfg.Narration, def.Narration)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero fps", func(c *config.Config) { c.Scenes.FPS = 0 }},
		{"zero hero", func(c *config.Config) { c.Scenes.HeroSeconds = 0 }},
		{"negative outro", func(c *config.Config) { c.Scenes.OutroSeconds = -1 }},
		{"negative crossfade", func(c *config.Config) { c.Scenes.CrossfadeFrames = -1 }},
		{"crossfade longer than outro", func(c *config.Config) { c.Scenes.CrossfadeFrames = 200 }},
		{"threshold below one", func(c *config.Config) { c.Narration.DiscrepancyThreshold = 0.5 }},
		{"zero cap", func(c *config.Config) { c.Narration.MaxShortSeconds = 0 }},
		{"zero chars", func(c *config.Config) { c.Captions.MaxCombinedChars = 0 }},
		{"negative lead", func(c *config.Config) { c.Captions.LeadSeconds = -0.1 }},
		{"volume above one", func(c *config.Config) { c.Audio.OutroVolume = 1.2 }},
		{"negative fade", func(c *config.Config) { c.Audio.FadeOutFrames = -3 }},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
