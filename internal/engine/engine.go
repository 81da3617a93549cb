package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"reeltime/internal/audiocurve"
	"reeltime/internal/captions"
	"reeltime/internal/duration"
	"reeltime/internal/editorial"
	"reeltime/internal/logging"
	"reeltime/internal/services"
	"reeltime/internal/timeline"
	"reeltime/internal/transcript"
)

// Error markers re-exported for callers that only import the engine.
var (
	ErrValidation    = services.ErrValidation
	ErrConfiguration = services.ErrConfiguration
)

// Request is one render job's planning input.
type Request struct {
	// ID is an optional caller identifier echoed in the result.
	ID               string  `json:"id,omitempty"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	// Phrases is the transcription. Nil or empty means none was available.
	Phrases []transcript.Phrase `json:"phrases,omitempty"`
	// Script is the narration text, used for untimed captions when there is
	// no transcription.
	Script string `json:"script,omitempty"`
}

// Result is the complete plan handed to the rendering layer.
type Result struct {
	RequestID             string            `json:"request_id,omitempty"`
	EffectiveAudioSeconds float64           `json:"effective_audio_seconds"`
	Duration              duration.Result   `json:"duration"`
	Blocks                []editorial.Block `json:"blocks"`
	Captions              captions.Schedule `json:"captions"`
	Timeline              timeline.Timeline `json:"timeline"`
	Levels                audiocurve.Levels `json:"levels"`
	Notes                 []Note            `json:"notes"`
}

// Music returns the music-bed gain curve for the plan.
func (r Result) Music() audiocurve.Curve {
	return audiocurve.Music(r.Timeline, r.Levels)
}

// Narration returns the voice gain curve for the plan.
func (r Result) Narration() audiocurve.Curve {
	return audiocurve.Narration(r.Timeline, r.Levels)
}

// CaptionAt returns the caption state at an absolute timeline frame.
func (r Result) CaptionAt(frame int) captions.Frame {
	return r.Captions.At(frame)
}

// Engine plans render requests against a fixed policy.
type Engine struct {
	policy Policy
	logger *slog.Logger
}

// New validates policy and returns an Engine. An inconsistent policy is
// rejected with ErrConfiguration before any request is seen.
func New(policy Policy, logger *slog.Logger) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		policy: policy,
		logger: logging.NewComponentLogger(logger, "engine"),
	}, nil
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Plan computes the plan for req. It fails only with ErrValidation for a
// malformed request or with the context's error when ctx is already done.
func (e *Engine) Plan(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, e.logger)

	res, err := e.plan(req)
	if err != nil {
		var se *services.Error
		if errors.As(err, &se) {
			logger = logging.WithContext(services.WithStage(ctx, se.Stage), e.logger)
		}
		logging.WarnWithContext(logger, "render request rejected", "plan_rejected",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the request payload and resubmit"),
			logging.String(logging.FieldImpact, "no timeline was produced"),
		)
		return Result{}, err
	}

	logNotes(ctx, e.logger, res.Notes)
	logger.Info("plan complete",
		logging.Float64("effective_seconds", res.EffectiveAudioSeconds),
		logging.Int("blocks", len(res.Blocks)),
		logging.Int("total_frames", res.Timeline.TotalFrames),
		logging.Bool("timed_captions", res.Captions.Timed),
	)
	return res, nil
}

func (e *Engine) plan(req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	var notes []Note
	var timing []transcript.Phrase
	if len(req.Phrases) > 0 && transcript.Timed(req.Phrases) {
		timing = req.Phrases
	}
	dur := duration.Reconcile(req.EstimatedSeconds, timing, e.policy.Limits)

	phrases, origin := transcript.NormalizeWithOrigin(req.Phrases)
	timed := len(phrases) > 0 && transcript.Timed(phrases)
	notes = append(notes, durationNotes(dur)...)

	editorialOpts := e.policy.Editorial
	if !timed {
		notes = append(notes, Note{Kind: NoteMissingTranscription, Message: "no transcription; captions distributed uniformly"})
		if len(phrases) == 0 {
			phrases = transcript.SplitScript(req.Script)
		}
		editorialOpts.Untimed = true
		if len(phrases) == 0 {
			notes = append(notes, Note{Kind: NoteEmptyScript, Message: "no script text; rendering without captions"})
		}
	}

	blocks, stats := editorial.Build(phrases, editorialOpts)
	if len(origin) > 0 {
		editorial.Reindex(blocks, origin, len(req.Phrases))
	}
	notes = append(notes, blockNotes(stats)...)

	tl, err := timeline.Assemble(e.policy.Scenes, dur.EffectiveSeconds)
	if err != nil {
		marker := ErrValidation
		if errors.Is(err, timeline.ErrInconsistentPolicy) {
			marker = ErrConfiguration
		}
		return Result{}, services.Wrap(marker, "timeline", "assemble", "", err)
	}
	if tl.ContentFloorApplied {
		notes = append(notes, Note{Kind: NoteContentFloor, Message: "narration shorter than the minimum content length; content scene padded"})
	}

	captionOpts := e.policy.Captions
	captionOpts.SceneOffsetSeconds = float64(tl.ContentStart()) / float64(tl.FPS)
	schedule := captions.Resolve(blocks, dur.EffectiveSeconds, timed, captionOpts)

	if notes == nil {
		notes = []Note{}
	}
	return Result{
		RequestID:             req.ID,
		EffectiveAudioSeconds: dur.EffectiveSeconds,
		Duration:              dur,
		Blocks:                blocks,
		Captions:              schedule,
		Timeline:              tl,
		Levels:                e.policy.Audio,
		Notes:                 notes,
	}, nil
}

func validateRequest(req Request) error {
	est := req.EstimatedSeconds
	if math.IsNaN(est) || math.IsInf(est, 0) || est < 0 {
		return services.Wrap(ErrValidation, "request", "validate", fmt.Sprintf("estimated duration %v must be a finite non-negative number", est), nil)
	}
	if err := transcript.Validate(req.Phrases); err != nil {
		return services.Wrap(ErrValidation, "request", "validate", "transcription", err)
	}
	return nil
}

// BatchResult pairs a request's plan with its error.
type BatchResult struct {
	Result Result
	Err    error
}

// PlanBatch plans requests concurrently with at most workers in flight and
// returns outcomes in input order. workers <= 0 plans every request at once.
func (e *Engine) PlanBatch(ctx context.Context, reqs []Request, workers int) []BatchResult {
	out := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return out
	}
	if workers <= 0 || workers > len(reqs) {
		workers = len(reqs)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := e.Plan(ctx, reqs[i])
			out[i] = BatchResult{Result: res, Err: err}
		}(i)
	}
	wg.Wait()
	return out
}
