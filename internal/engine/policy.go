package engine

import (
	"errors"

	"reeltime/internal/audiocurve"
	"reeltime/internal/captions"
	"reeltime/internal/config"
	"reeltime/internal/duration"
	"reeltime/internal/editorial"
	"reeltime/internal/services"
	"reeltime/internal/timeline"
)

// Policy gathers every constant a plan depends on.
type Policy struct {
	Limits    duration.Limits   `json:"limits"`
	Editorial editorial.Options `json:"editorial"`
	Captions  captions.Options  `json:"captions"`
	Scenes    timeline.Policy   `json:"scenes"`
	Audio     audiocurve.Levels `json:"audio"`
}

// PolicyFromConfig maps configuration sections onto a Policy. A nil config
// yields the built-in defaults.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	fps := cfg.Scenes.FPS
	return Policy{
		Limits: duration.Limits{
			MaxShortSeconds:      cfg.Narration.MaxShortSeconds,
			DiscrepancyThreshold: cfg.Narration.DiscrepancyThreshold,
		},
		Editorial: editorial.Options{
			MaxGroupGapSeconds:     cfg.Captions.MaxGroupGapSeconds,
			MaxWordsForGrouping:    cfg.Captions.MaxWordsForGrouping,
			MaxCombinedChars:       cfg.Captions.MaxCombinedChars,
			MinBlockDurationFrames: cfg.Captions.MinBlockDurationFrames,
			MaxWordsForPunch:       cfg.Captions.MaxWordsForPunch,
			FPS:                    fps,
		},
		Captions: captions.Options{
			FPS:                    fps,
			LeadSeconds:            cfg.Captions.LeadSeconds,
			LagSeconds:             cfg.Captions.LagSeconds,
			PauseFramesBeforePunch: cfg.Captions.PauseFramesBeforePunch,
			PauseFramesAfterPunch:  cfg.Captions.PauseFramesAfterPunch,
			FadeFrames:             cfg.Captions.FadeFrames,
		},
		Scenes: timeline.Policy{
			FPS:                 fps,
			HeroSeconds:         cfg.Scenes.HeroSeconds,
			MinContentSeconds:   cfg.Scenes.MinContentSeconds,
			OutroSeconds:        cfg.Scenes.OutroSeconds,
			CrossfadeFrames:     cfg.Scenes.CrossfadeFrames,
			BreathingRoomFrames: cfg.Scenes.BreathingRoomFrames,
		},
		Audio: audiocurve.Levels{
			HeroVolume:         cfg.Audio.HeroVolume,
			ContentVolume:      cfg.Audio.ContentVolume,
			OutroVolume:        cfg.Audio.OutroVolume,
			FadeOutFrames:      cfg.Audio.FadeOutFrames,
			NarrationVolume:    cfg.Audio.NarrationVolume,
			VoiceFadeoutFrames: cfg.Audio.VoiceFadeoutFrames,
		},
	}
}

// DefaultPolicy returns the policy built from configuration defaults.
func DefaultPolicy() Policy {
	return PolicyFromConfig(nil)
}

// Validate reports an ErrConfiguration when the policy cannot produce a
// consistent timeline.
func (p Policy) Validate() error {
	var problems []error
	if err := p.Scenes.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := p.Audio.Validate(); err != nil {
		problems = append(problems, err)
	}
	if p.Editorial.FPS != p.Scenes.FPS || p.Captions.FPS != p.Scenes.FPS {
		problems = append(problems, errors.New("editorial, caption and scene fps differ"))
	}
	if p.Editorial.MaxCombinedChars <= 0 {
		problems = append(problems, errors.New("max combined chars must be positive"))
	}
	if p.Limits.MaxShortSeconds <= 0 {
		problems = append(problems, errors.New("max short seconds must be positive"))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(ErrConfiguration, "policy", "validate", "inconsistent scene configuration", errors.Join(problems...))
}
