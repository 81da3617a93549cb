package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScenes(); err != nil {
		return err
	}
	if err := c.validateNarration(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScenes() error {
	s := c.Scenes
	if s.FPS <= 0 {
		return errors.New("scenes.fps must be positive")
	}
	if !positive(s.HeroSeconds) {
		return errors.New("scenes.hero_seconds must be positive")
	}
	if !positive(s.OutroSeconds) {
		return errors.New("scenes.outro_seconds must be positive")
	}
	if !nonNegative(s.MinContentSeconds) {
		return errors.New("scenes.min_content_seconds must be non-negative")
	}
	if s.CrossfadeFrames < 0 {
		return errors.New("scenes.crossfade_frames must be non-negative")
	}
	if s.BreathingRoomFrames < 0 {
		return errors.New("scenes.breathing_room_frames must be non-negative")
	}
	heroFrames := int(math.Round(s.HeroSeconds * float64(s.FPS)))
	outroFrames := int(math.Round(s.OutroSeconds * float64(s.FPS)))
	if s.CrossfadeFrames > heroFrames || s.CrossfadeFrames > outroFrames {
		return fmt.Errorf("scenes.crossfade_frames (%d) exceeds hero (%d) or outro (%d) length", s.CrossfadeFrames, heroFrames, outroFrames)
	}
	return nil
}

func (c *Config) validateNarration() error {
	if !positive(c.Narration.MaxShortSeconds) {
		return errors.New("narration.max_short_seconds must be positive")
	}
	if !positive(c.Narration.DiscrepancyThreshold) || c.Narration.DiscrepancyThreshold < 1 {
		return errors.New("narration.discrepancy_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	cp := c.Captions
	if !nonNegative(cp.LeadSeconds) || !nonNegative(cp.LagSeconds) {
		return errors.New("captions.lead_seconds and captions.lag_seconds must be non-negative")
	}
	if cp.PauseFramesBeforePunch < 0 || cp.PauseFramesAfterPunch < 0 {
		return errors.New("captions pause frames must be non-negative")
	}
	if !nonNegative(cp.MaxGroupGapSeconds) {
		return errors.New("captions.max_group_gap_seconds must be non-negative")
	}
	if cp.MaxWordsForGrouping < 0 {
		return errors.New("captions.max_words_for_grouping must be non-negative")
	}
	if cp.MaxCombinedChars <= 0 {
		return errors.New("captions.max_combined_chars must be positive")
	}
	if cp.MinBlockDurationFrames < 0 {
		return errors.New("captions.min_block_duration_frames must be non-negative")
	}
	if cp.MaxWordsForPunch < 0 {
		return errors.New("captions.max_words_for_punch must be non-negative")
	}
	if cp.FadeFrames < 0 {
		return errors.New("captions.fade_frames must be non-negative")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	for name, value := range map[string]float64{
		"audio.hero_volume":      a.HeroVolume,
		"audio.content_volume":   a.ContentVolume,
		"audio.outro_volume":     a.OutroVolume,
		"audio.narration_volume": a.NarrationVolume,
	} {
		if math.IsNaN(value) || value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if a.FadeOutFrames < 0 || a.VoiceFadeoutFrames < 0 {
		return errors.New("audio fade frames must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
