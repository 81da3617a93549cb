package timeline

import (
	"errors"
	"fmt"
	"math"
)

// SceneName identifies a scene or audio sequence.
type SceneName string

const (
	SceneHero      SceneName = "hero"
	SceneContent   SceneName = "content"
	SceneOutro     SceneName = "outro"
	TrackMusic     SceneName = "music"
	TrackNarration SceneName = "narration"
)

// ErrInvalidDuration reports a negative or non-finite narration duration.
var ErrInvalidDuration = errors.New("invalid narration duration")

// SceneBoundary is a half-open frame range [StartFrame, StartFrame+DurationFrames).
type SceneBoundary struct {
	Name           SceneName `json:"name"`
	StartFrame     int       `json:"start_frame"`
	DurationFrames int       `json:"duration_frames"`
}

// EndFrame returns the first frame after the scene.
func (s SceneBoundary) EndFrame() int {
	return s.StartFrame + s.DurationFrames
}

// Contains reports whether frame falls inside the scene.
func (s SceneBoundary) Contains(frame int) bool {
	return frame >= s.StartFrame && frame < s.EndFrame()
}

// Timeline is the assembled scene layout. Scenes are the visual sequences in
// start order; Tracks are the audio sequences laid over them.
type Timeline struct {
	FPS                 int             `json:"fps"`
	Scenes              []SceneBoundary `json:"scenes"`
	Tracks              []SceneBoundary `json:"tracks"`
	TotalFrames         int             `json:"total_frames"`
	CrossfadeFrames     int             `json:"crossfade_frames"`
	BreathingRoomFrames int             `json:"breathing_room_frames"`
	// NarrationFrames is the effective narration length in frames.
	NarrationFrames int `json:"narration_frames"`
	// ContentFloorApplied is true when the minimum content length, not the
	// narration, sized the content scene.
	ContentFloorApplied bool `json:"content_floor_applied"`
}

// sceneSpec describes one scene for the fold: its length and how many frames
// it starts before the previous scene ends.
type sceneSpec struct {
	name    SceneName
	frames  int
	overlap int
}

// Assemble lays out the scenes for a narration of effectiveSeconds.
func Assemble(policy Policy, effectiveSeconds float64) (Timeline, error) {
	if err := policy.Validate(); err != nil {
		return Timeline{}, err
	}
	if math.IsNaN(effectiveSeconds) || math.IsInf(effectiveSeconds, 0) || effectiveSeconds < 0 {
		return Timeline{}, fmt.Errorf("%w: %v", ErrInvalidDuration, effectiveSeconds)
	}

	fps := policy.FPS
	crossfade := policy.CrossfadeFrames
	narrationFrames := int(math.Ceil(effectiveSeconds * float64(fps)))
	paddedNarration := narrationFrames + fps
	contentCore := max(policy.MinContentFrames(), paddedNarration)

	// Content runs through the breathing room and into the outro's cross-fade.
	specs := []sceneSpec{
		{name: SceneHero, frames: policy.HeroFrames()},
		{name: SceneContent, frames: contentCore + policy.BreathingRoomFrames + crossfade, overlap: crossfade},
		{name: SceneOutro, frames: policy.OutroBaseFrames() + crossfade, overlap: crossfade},
	}
	scenes := foldScenes(specs)

	content, outro := scenes[1], scenes[2]
	total := outro.EndFrame()
	tl := Timeline{
		FPS:                 fps,
		Scenes:              scenes,
		TotalFrames:         total,
		CrossfadeFrames:     crossfade,
		BreathingRoomFrames: policy.BreathingRoomFrames,
		NarrationFrames:     narrationFrames,
		ContentFloorApplied: policy.MinContentFrames() > paddedNarration,
		Tracks: []SceneBoundary{
			{Name: TrackMusic, StartFrame: 0, DurationFrames: total},
			{Name: TrackNarration, StartFrame: content.StartFrame, DurationFrames: outro.StartFrame - content.StartFrame},
		},
	}
	if err := tl.check(); err != nil {
		return Timeline{}, err
	}
	return tl, nil
}

func foldScenes(specs []sceneSpec) []SceneBoundary {
	scenes := make([]SceneBoundary, 0, len(specs))
	end := 0
	for _, spec := range specs {
		start := max(end-spec.overlap, 0)
		scenes = append(scenes, SceneBoundary{Name: spec.name, StartFrame: start, DurationFrames: spec.frames})
		end = start + spec.frames
	}
	return scenes
}

// check enforces scene ordering and the cross-fade overlap limit.
func (t Timeline) check() error {
	for i, scene := range t.Scenes {
		if scene.StartFrame < 0 || scene.DurationFrames <= 0 || scene.EndFrame() > t.TotalFrames {
			return fmt.Errorf("%w: scene %s out of bounds [%d,%d) total %d",
				ErrInconsistentPolicy, scene.Name, scene.StartFrame, scene.EndFrame(), t.TotalFrames)
		}
		if i == 0 {
			continue
		}
		prev := t.Scenes[i-1]
		if scene.StartFrame <= prev.StartFrame {
			return fmt.Errorf("%w: scene %s does not start after %s", ErrInconsistentPolicy, scene.Name, prev.Name)
		}
		if overlap := prev.EndFrame() - scene.StartFrame; overlap > t.CrossfadeFrames {
			return fmt.Errorf("%w: scenes %s and %s overlap by %d frames", ErrInconsistentPolicy, prev.Name, scene.Name, overlap)
		}
		if i >= 2 && scene.StartFrame < t.Scenes[i-2].EndFrame() {
			return fmt.Errorf("%w: scene %s overlaps non-adjacent %s", ErrInconsistentPolicy, scene.Name, t.Scenes[i-2].Name)
		}
	}
	return nil
}

// Scene returns the named scene or track.
func (t Timeline) Scene(name SceneName) (SceneBoundary, bool) {
	for _, s := range t.Scenes {
		if s.Name == name {
			return s, true
		}
	}
	for _, s := range t.Tracks {
		if s.Name == name {
			return s, true
		}
	}
	return SceneBoundary{}, false
}

// ContentStart is the first frame of the content scene.
func (t Timeline) ContentStart() int {
	s, _ := t.Scene(SceneContent)
	return s.StartFrame
}

// OutroStart is the first frame of the outro scene, which is also where the
// narration sequence ends.
func (t Timeline) OutroStart() int {
	s, _ := t.Scene(SceneOutro)
	return s.StartFrame
}

// ScenesAt returns the visual scenes on screen at frame. Two scenes are
// returned during a cross-fade.
func (t Timeline) ScenesAt(frame int) []SceneName {
	var names []SceneName
	for _, s := range t.Scenes {
		if s.Contains(frame) {
			names = append(names, s.Name)
		}
	}
	return names
}

// DurationSeconds is the output video length.
func (t Timeline) DurationSeconds() float64 {
	if t.FPS <= 0 {
		return 0
	}
	return float64(t.TotalFrames) / float64(t.FPS)
}
