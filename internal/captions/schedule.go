package captions

import (
	"math"
	"sort"

	"reeltime/internal/editorial"
)

// Options controls window placement.
type Options struct {
	FPS                    int
	LeadSeconds            float64
	LagSeconds             float64
	PauseFramesBeforePunch int
	PauseFramesAfterPunch  int
	// SceneOffsetSeconds shifts every window so frames are relative to a
	// scene that starts before the narration does.
	SceneOffsetSeconds float64
	// FadeFrames is the length of the opacity ramp at each end of a window.
	FadeFrames int
}

// Window is the half-open frame range [StartFrame, EndFrame) in which a block
// is on screen. Zero-width windows belong to blocks that fall beyond the
// narration span and are never shown.
type Window struct {
	Index      int              `json:"index"`
	StartFrame int              `json:"start_frame"`
	EndFrame   int              `json:"end_frame"`
	Weight     editorial.Weight `json:"weight"`
	Lines      []string         `json:"lines"`
}

// Frames returns the window width.
func (w Window) Frames() int {
	return w.EndFrame - w.StartFrame
}

// Schedule holds the resolved windows for one render request.
type Schedule struct {
	Windows     []Window `json:"windows"`
	StartFrame  int      `json:"start_frame"`
	TotalFrames int      `json:"total_frames"`
	Timed       bool     `json:"timed"`
	FadeFrames  int      `json:"fade_frames"`
}

// Frame is the caption state at a single frame. Index is -1 when no caption
// is showing.
type Frame struct {
	Index      int     `json:"index"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
	Opacity    float64 `json:"opacity"`
}

// NoCaption is the Frame returned outside every window.
var NoCaption = Frame{Index: -1}

// Resolve computes display windows for blocks over a narration lasting
// effectiveSeconds. timed selects transcription-driven placement; otherwise
// blocks are distributed uniformly.
func Resolve(blocks []editorial.Block, effectiveSeconds float64, timed bool, opts Options) Schedule {
	fps := opts.FPS
	if fps <= 0 {
		fps = 1
	}
	base := int(math.Round(opts.SceneOffsetSeconds * float64(fps)))
	if base < 0 {
		base = 0
	}
	span := int(math.Ceil(math.Max(effectiveSeconds, 0) * float64(fps)))

	sched := Schedule{
		StartFrame:  base,
		TotalFrames: base + span,
		Timed:       timed,
		FadeFrames:  opts.FadeFrames,
	}
	if len(blocks) == 0 {
		sched.Windows = []Window{}
		return sched
	}
	if timed {
		sched.Windows = timedWindows(blocks, opts, fps)
	} else {
		sched.Windows = uniformWindows(blocks, base, span)
	}
	clampWindows(sched.Windows, sched.StartFrame, sched.TotalFrames)
	return sched
}

func timedWindows(blocks []editorial.Block, opts Options, fps int) []Window {
	windows := make([]Window, len(blocks))
	for i, b := range blocks {
		windows[i] = Window{
			Index:      i,
			StartFrame: secondsToFrame(b.StartSeconds-opts.LeadSeconds+opts.SceneOffsetSeconds, fps),
			EndFrame:   secondsToFrame(b.EndSeconds+opts.LagSeconds+opts.SceneOffsetSeconds, fps),
			Weight:     b.Weight,
			Lines:      b.Lines,
		}
		if windows[i].EndFrame <= windows[i].StartFrame {
			windows[i].EndFrame = windows[i].StartFrame + 1
		}
	}

	for i := 1; i < len(windows); i++ {
		prev, cur := &windows[i-1], &windows[i]
		pause := pauseBetween(blocks[i-1].Weight, blocks[i].Weight, opts)
		cur.StartFrame += pause
		// The previous block yields at the current block's undelayed start,
		// leaving the pause as an empty beat.
		if limit := cur.StartFrame - pause; prev.EndFrame > limit {
			prev.EndFrame = max(limit, prev.StartFrame+1)
		}
		if floor := prev.EndFrame + pause; cur.StartFrame < floor {
			cur.StartFrame = floor
		}
		if cur.EndFrame <= cur.StartFrame {
			cur.EndFrame = cur.StartFrame + 1
		}
	}
	return windows
}

func pauseBetween(prev, cur editorial.Weight, opts Options) int {
	pause := 0
	if cur == editorial.WeightPunch {
		pause += opts.PauseFramesBeforePunch
	}
	if prev == editorial.WeightPunch {
		pause += opts.PauseFramesAfterPunch
	}
	return pause
}

func uniformWindows(blocks []editorial.Block, base, span int) []Window {
	n := len(blocks)
	windows := make([]Window, n)
	for i, b := range blocks {
		windows[i] = Window{
			Index:      i,
			StartFrame: base + i*span/n,
			EndFrame:   base + (i+1)*span/n,
			Weight:     b.Weight,
			Lines:      b.Lines,
		}
	}
	return windows
}

func clampWindows(windows []Window, lo, hi int) {
	for i := range windows {
		windows[i].StartFrame = clampInt(windows[i].StartFrame, lo, hi)
		windows[i].EndFrame = clampInt(windows[i].EndFrame, windows[i].StartFrame, hi)
	}
}

// At returns the caption state for frame.
func (s Schedule) At(frame int) Frame {
	idx := sort.Search(len(s.Windows), func(i int) bool {
		return s.Windows[i].EndFrame > frame
	})
	if idx >= len(s.Windows) || s.Windows[idx].StartFrame > frame {
		return NoCaption
	}
	w := s.Windows[idx]
	return Frame{
		Index:      w.Index,
		StartFrame: w.StartFrame,
		EndFrame:   w.EndFrame,
		Opacity:    Opacity(w, frame, s.FadeFrames),
	}
}

// Opacity is the fade-in/fade-out envelope for frame inside w. The ramp is
// shortened for windows narrower than two fades.
func Opacity(w Window, frame, fadeFrames int) float64 {
	if frame < w.StartFrame || frame >= w.EndFrame {
		return 0
	}
	fade := min(fadeFrames, w.Frames()/2)
	if fade <= 0 {
		return 1
	}
	in := float64(frame-w.StartFrame) / float64(fade)
	out := float64(w.EndFrame-frame) / float64(fade)
	return math.Min(1, math.Min(in, out))
}

func secondsToFrame(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
