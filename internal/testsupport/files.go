package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"reeltime/internal/transcript"
)

// WriteJSON marshals v to path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteWhisperX writes phrases as a WhisperX segments document, one segment
// per phrase with word timings copied through.
func WriteWhisperX(t testing.TB, path string, phrases []transcript.Phrase) {
	t.Helper()

	type word struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	}
	type segment struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Words []word  `json:"words,omitempty"`
	}
	doc := struct {
		Segments []segment `json:"segments"`
	}{}
	for _, p := range phrases {
		seg := segment{Text: p.Text, Start: p.StartSeconds, End: p.EndSeconds}
		for _, w := range p.Words {
			seg.Words = append(seg.Words, word{Word: w.Text, Start: w.StartSeconds, End: w.EndSeconds})
		}
		doc.Segments = append(doc.Segments, seg)
	}
	WriteJSON(t, path, doc)
}
