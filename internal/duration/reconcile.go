package duration

import (
	"math"

	"reeltime/internal/transcript"
)

// Source identifies which input the effective duration was derived from.
type Source string

const (
	SourceEstimate      Source = "estimate"
	SourceTranscription Source = "transcription"
)

// safetyMarginSeconds pads a corrected duration so the last word is never
// clipped by rounding.
const safetyMarginSeconds = 1

// Limits bounds the reconciliation.
type Limits struct {
	// MaxShortSeconds is the hard platform cap on narration length.
	MaxShortSeconds float64
	// DiscrepancyThreshold is the transcribed/estimated ratio above which the
	// correction is flagged for observability.
	DiscrepancyThreshold float64
}

// Result is the outcome of Reconcile.
type Result struct {
	EffectiveSeconds float64 `json:"effective_seconds"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	// TranscribedEnd is the end of the last phrase, zero without transcription.
	TranscribedEnd float64 `json:"transcribed_end"`
	Source         Source  `json:"source"`
	Corrected      bool    `json:"corrected"`
	Discrepancy    bool    `json:"discrepancy"`
	Capped         bool    `json:"capped"`
	// UncappedSeconds is the duration before MaxShortSeconds was applied.
	UncappedSeconds float64 `json:"uncapped_seconds"`
}

// Ratio returns transcribed end over estimate, or zero when undefined.
func (r Result) Ratio() float64 {
	if r.EstimatedSeconds <= 0 || r.TranscribedEnd <= 0 {
		return 0
	}
	return r.TranscribedEnd / r.EstimatedSeconds
}

// Reconcile merges the estimated duration with the transcribed one. An empty
// phrase list is treated the same as a missing transcription.
func Reconcile(estimatedSeconds float64, phrases []transcript.Phrase, limits Limits) Result {
	estimate := estimatedSeconds
	if math.IsNaN(estimate) || estimate < 0 {
		estimate = 0
	}
	res := Result{
		EstimatedSeconds: estimate,
		Source:           SourceEstimate,
		UncappedSeconds:  estimate,
	}

	if len(phrases) > 0 {
		res.TranscribedEnd = transcript.End(phrases)
		if res.TranscribedEnd > estimate {
			res.UncappedSeconds = math.Ceil(res.TranscribedEnd) + safetyMarginSeconds
			res.Source = SourceTranscription
			res.Corrected = true
			if limits.DiscrepancyThreshold > 0 && res.TranscribedEnd > estimate*limits.DiscrepancyThreshold {
				res.Discrepancy = true
			}
		}
	}

	res.EffectiveSeconds = res.UncappedSeconds
	if limits.MaxShortSeconds > 0 && res.EffectiveSeconds > limits.MaxShortSeconds {
		res.EffectiveSeconds = limits.MaxShortSeconds
		res.Capped = true
	}
	return res
}
