package engine

import (
	"context"
	"fmt"
	"log/slog"

	"reeltime/internal/duration"
	"reeltime/internal/editorial"
	"reeltime/internal/logging"
	"reeltime/internal/services"
)

// NoteKind classifies a recoverable condition met while planning.
type NoteKind string

const (
	NoteMissingTranscription NoteKind = "missing_transcription"
	NoteDurationCorrected    NoteKind = "duration_corrected"
	NoteDurationDiscrepancy  NoteKind = "duration_discrepancy"
	NoteDurationCapped       NoteKind = "duration_capped"
	NoteEmptyScript          NoteKind = "empty_script"
	NoteBlocksMerged         NoteKind = "blocks_merged"
	NoteBlocksStretched      NoteKind = "blocks_stretched"
	NoteBlocksShifted        NoteKind = "blocks_shifted"
	NoteContentFloor         NoteKind = "content_floor"
)

// Note records a fallback or correction. Notes are informational; a result
// carrying notes is still complete.
type Note struct {
	Kind    NoteKind `json:"kind"`
	Message string   `json:"message"`
}

// Has reports whether notes contains kind.
func Has(notes []Note, kind NoteKind) bool {
	for _, n := range notes {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

func durationNotes(res duration.Result) []Note {
	var notes []Note
	if res.Corrected {
		notes = append(notes, Note{
			Kind:    NoteDurationCorrected,
			Message: fmt.Sprintf("transcription ends at %.2fs, after the %.2fs estimate; using %.0fs", res.TranscribedEnd, res.EstimatedSeconds, res.UncappedSeconds),
		})
	}
	if res.Discrepancy {
		notes = append(notes, Note{
			Kind:    NoteDurationDiscrepancy,
			Message: fmt.Sprintf("transcribed narration is %.2fx the estimate", res.Ratio()),
		})
	}
	if res.Capped {
		notes = append(notes, Note{
			Kind:    NoteDurationCapped,
			Message: fmt.Sprintf("narration of %.2fs capped at %.0fs", res.UncappedSeconds, res.EffectiveSeconds),
		})
	}
	return notes
}

func blockNotes(stats editorial.Stats) []Note {
	var notes []Note
	if stats.Merged > 0 {
		notes = append(notes, Note{
			Kind:    NoteBlocksMerged,
			Message: fmt.Sprintf("%d short block(s) merged into a neighbour", stats.Merged),
		})
	}
	if stats.Stretched > 0 {
		notes = append(notes, Note{
			Kind:    NoteBlocksStretched,
			Message: fmt.Sprintf("%d short block(s) stretched to the minimum duration", stats.Stretched),
		})
	}
	if stats.Shifted > 0 {
		notes = append(notes, Note{
			Kind:    NoteBlocksShifted,
			Message: fmt.Sprintf("%d block(s) delayed behind a stretched predecessor", stats.Shifted),
		})
	}
	return notes
}

// noteStage names the component a note came from.
func noteStage(kind NoteKind) string {
	switch kind {
	case NoteDurationCorrected, NoteDurationDiscrepancy, NoteDurationCapped:
		return "duration"
	case NoteBlocksMerged, NoteBlocksStretched, NoteBlocksShifted, NoteEmptyScript:
		return "editorial"
	case NoteContentFloor:
		return "timeline"
	default:
		return "captions"
	}
}

// logNotes emits fallbacks at debug level and corrections at info level,
// each tagged with the stage that raised it.
func logNotes(ctx context.Context, base *slog.Logger, notes []Note) {
	for _, n := range notes {
		logger := logging.WithContext(services.WithStage(ctx, noteStage(n.Kind)), base)
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, string(n.Kind)),
			logging.String("note", n.Message),
		}
		switch n.Kind {
		case NoteMissingTranscription, NoteEmptyScript, NoteContentFloor, NoteBlocksMerged, NoteBlocksStretched, NoteBlocksShifted:
			logger.Debug("planning fallback", logging.Args(attrs...)...)
		default:
			logger.Info("narration duration adjusted", logging.Args(attrs...)...)
		}
	}
}
