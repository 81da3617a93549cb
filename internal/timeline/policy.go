package timeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrInconsistentPolicy reports scene policy values that cannot produce a
// valid timeline.
var ErrInconsistentPolicy = errors.New("inconsistent scene policy")

// Policy holds the fixed scene-length constants.
type Policy struct {
	FPS                 int     `json:"fps"`
	HeroSeconds         float64 `json:"hero_seconds"`
	MinContentSeconds   float64 `json:"min_content_seconds"`
	OutroSeconds        float64 `json:"outro_seconds"`
	CrossfadeFrames     int     `json:"crossfade_frames"`
	BreathingRoomFrames int     `json:"breathing_room_frames"`
}

// HeroFrames is the hero scene length.
func (p Policy) HeroFrames() int {
	return secondsToFrames(p.HeroSeconds, p.FPS)
}

// OutroBaseFrames is the outro length before the cross-fade extension.
func (p Policy) OutroBaseFrames() int {
	return secondsToFrames(p.OutroSeconds, p.FPS)
}

// MinContentFrames is the content floor.
func (p Policy) MinContentFrames() int {
	return secondsToFrames(p.MinContentSeconds, p.FPS)
}

// Validate rejects policies that would yield negative or overlapping
// boundaries.
func (p Policy) Validate() error {
	switch {
	case p.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInconsistentPolicy, p.FPS)
	case !finitePositive(p.HeroSeconds):
		return fmt.Errorf("%w: hero_seconds must be positive", ErrInconsistentPolicy)
	case !finitePositive(p.OutroSeconds):
		return fmt.Errorf("%w: outro_seconds must be positive", ErrInconsistentPolicy)
	case math.IsNaN(p.MinContentSeconds) || math.IsInf(p.MinContentSeconds, 0) || p.MinContentSeconds < 0:
		return fmt.Errorf("%w: min_content_seconds must be >= 0", ErrInconsistentPolicy)
	case p.CrossfadeFrames < 0:
		return fmt.Errorf("%w: crossfade_frames must be >= 0", ErrInconsistentPolicy)
	case p.BreathingRoomFrames < 0:
		return fmt.Errorf("%w: breathing_room_frames must be >= 0", ErrInconsistentPolicy)
	}
	hero, outro := p.HeroFrames(), p.OutroBaseFrames()
	if p.CrossfadeFrames > min(hero, outro) {
		return fmt.Errorf("%w: crossfade_frames %d exceeds shortest scene (hero %d, outro %d frames)",
			ErrInconsistentPolicy, p.CrossfadeFrames, hero, outro)
	}
	if floor := max(p.MinContentFrames(), p.FPS); p.CrossfadeFrames > floor {
		return fmt.Errorf("%w: crossfade_frames %d exceeds minimum content length %d frames",
			ErrInconsistentPolicy, p.CrossfadeFrames, floor)
	}
	return nil
}

func secondsToFrames(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
