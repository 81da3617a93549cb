package config

const (
	defaultConfigPath = "~/.config/reeltime/config.toml"
	defaultStateDir   = "~/.local/share/reeltime"
	defaultLogDir     = "~/.local/share/reeltime/logs"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultFPS                 = 30
	defaultHeroSeconds         = 8
	defaultMinContentSeconds   = 37
	defaultOutroSeconds        = 5
	defaultCrossfadeFrames     = 30
	defaultBreathingRoomFrames = 45

	defaultMaxShortSeconds      = 60
	defaultDiscrepancyThreshold = 1.5

	defaultLeadSeconds            = 0.2
	defaultLagSeconds             = 0.15
	defaultPauseFramesBeforePunch = 6
	defaultPauseFramesAfterPunch  = 4
	defaultMaxGroupGapSeconds     = 0.6
	defaultMaxWordsForGrouping    = 7
	defaultMaxCombinedChars       = 50
	defaultMinBlockDurationFrames = 18
	defaultMaxWordsForPunch       = 4
	defaultCaptionFadeFrames      = 6

	defaultHeroVolume         = 0.6
	defaultContentVolume      = 0.18
	defaultOutroVolume        = 0.7
	defaultNarrationVolume    = 1.0
	defaultFadeOutFrames      = 45
	defaultVoiceFadeoutFrames = 12

	defaultJobsConcurrency = 4
	defaultJobsClaimBatch  = 32
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Scenes: Scenes{
			FPS:                 defaultFPS,
			HeroSeconds:         defaultHeroSeconds,
			MinContentSeconds:   defaultMinContentSeconds,
			OutroSeconds:        defaultOutroSeconds,
			CrossfadeFrames:     defaultCrossfadeFrames,
			BreathingRoomFrames: defaultBreathingRoomFrames,
		},
		Narration: Narration{
			MaxShortSeconds:      defaultMaxShortSeconds,
			DiscrepancyThreshold: defaultDiscrepancyThreshold,
		},
		Captions: Captions{
			LeadSeconds:            defaultLeadSeconds,
			LagSeconds:             defaultLagSeconds,
			PauseFramesBeforePunch: defaultPauseFramesBeforePunch,
			PauseFramesAfterPunch:  defaultPauseFramesAfterPunch,
			MaxGroupGapSeconds:     defaultMaxGroupGapSeconds,
			MaxWordsForGrouping:    defaultMaxWordsForGrouping,
			MaxCombinedChars:       defaultMaxCombinedChars,
			MinBlockDurationFrames: defaultMinBlockDurationFrames,
			MaxWordsForPunch:       defaultMaxWordsForPunch,
			FadeFrames:             defaultCaptionFadeFrames,
		},
		Audio: Audio{
			HeroVolume:         defaultHeroVolume,
			ContentVolume:      defaultContentVolume,
			OutroVolume:        defaultOutroVolume,
			NarrationVolume:    defaultNarrationVolume,
			FadeOutFrames:      defaultFadeOutFrames,
			VoiceFadeoutFrames: defaultVoiceFadeoutFrames,
		},
		Jobs: Jobs{
			Concurrency: defaultJobsConcurrency,
			ClaimBatch:  defaultJobsClaimBatch,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
