package audiocurve

import (
	"errors"
	"fmt"
	"math"

	"reeltime/internal/timeline"
)

// ErrInvalidLevels reports gain settings outside [0,1] or negative fades.
var ErrInvalidLevels = errors.New("invalid audio levels")

// Levels are the section volumes and fade lengths.
type Levels struct {
	HeroVolume    float64 `json:"hero_volume"`
	ContentVolume float64 `json:"content_volume"`
	OutroVolume   float64 `json:"outro_volume"`
	// FadeOutFrames is the music bed's tail fade to silence.
	FadeOutFrames int `json:"fade_out_frames"`
	// NarrationVolume is the voice gain before its fade-out.
	NarrationVolume    float64 `json:"narration_volume"`
	VoiceFadeoutFrames int     `json:"voice_fadeout_frames"`
}

// Validate checks the levels.
func (l Levels) Validate() error {
	for name, v := range map[string]float64{
		"hero_volume":      l.HeroVolume,
		"content_volume":   l.ContentVolume,
		"outro_volume":     l.OutroVolume,
		"narration_volume": l.NarrationVolume,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %v", ErrInvalidLevels, name, v)
		}
	}
	if l.FadeOutFrames < 0 || l.VoiceFadeoutFrames < 0 {
		return fmt.Errorf("%w: fade frames must be >= 0", ErrInvalidLevels)
	}
	return nil
}

// Curve maps a frame to a gain in [0,1].
type Curve func(frame int) float64

// Music returns the music-bed curve for tl.
func Music(tl timeline.Timeline, levels Levels) Curve {
	contentStart := tl.ContentStart()
	outroStart := tl.OutroStart()
	ramp := tl.CrossfadeFrames
	total := tl.TotalFrames
	fadeOut := min(levels.FadeOutFrames, total)

	return func(frame int) float64 {
		if frame >= total {
			return 0
		}
		frame = max(frame, 0)

		var level float64
		switch {
		case frame < contentStart:
			level = levels.HeroVolume
		case frame < outroStart:
			level = lerp(levels.HeroVolume, levels.ContentVolume, progress(frame-contentStart, ramp))
		default:
			level = lerp(levels.ContentVolume, levels.OutroVolume, progress(frame-outroStart, ramp))
		}
		if fadeOut > 0 && frame >= total-fadeOut {
			level *= float64(total-frame) / float64(fadeOut)
		}
		return clamp01(level)
	}
}

// Narration returns the voice gain curve. It is silent outside the narration
// sequence and fades to zero over the sequence's last VoiceFadeoutFrames.
func Narration(tl timeline.Timeline, levels Levels) Curve {
	seq, _ := tl.Scene(timeline.TrackNarration)
	start, end := seq.StartFrame, seq.EndFrame()
	fade := min(levels.VoiceFadeoutFrames, seq.DurationFrames)

	return func(frame int) float64 {
		if frame < start || frame >= end {
			return 0
		}
		level := levels.NarrationVolume
		if fade > 0 && frame >= end-fade {
			level *= max(float64(end-1-frame)/float64(fade), 0)
		}
		return clamp01(level)
	}
}

// Point is one sampled curve value.
type Point struct {
	Frame int     `json:"frame"`
	Level float64 `json:"level"`
}

// Sample evaluates c every step frames over [from, to).
func Sample(c Curve, from, to, step int) []Point {
	if step <= 0 {
		step = 1
	}
	var points []Point
	for f := from; f < to; f += step {
		points = append(points, Point{Frame: f, Level: c(f)})
	}
	return points
}

// progress is the position of offset within a ramp of length frames, in [0,1].
func progress(offset, frames int) float64 {
	if frames <= 0 {
		return 1
	}
	return math.Min(1, float64(offset)/float64(frames))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
