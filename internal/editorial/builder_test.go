package editorial

import (
	"fmt"
	"math"
	"testing"

	"reeltime/internal/transcript"
)

func defaultOptions() Options {
	return Options{
		MaxGroupGapSeconds:     0.6,
		MaxWordsForGrouping:    7,
		MaxCombinedChars:       50,
		MinBlockDurationFrames: 18,
		MaxWordsForPunch:       4,
		FPS:                    30,
	}
}

func phrase(text string, start, end float64) transcript.Phrase {
	return transcript.Phrase{Text: text, StartSeconds: start, EndSeconds: end}
}

func TestBuildEmptyInput(t *testing.T) {
	blocks, stats := Build(nil, defaultOptions())
	if blocks == nil || len(blocks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", blocks)
	}
	if stats != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

func TestBuildPairsCloseShortPhrases(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("Hola", 0.0, 0.8),
		phrase("mundo amigo", 1.1, 2.0),
	}
	blocks, stats := Build(phrases, defaultOptions())
	if len(blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(blocks))
	}
	b := blocks[0]
	if len(b.Lines) != 2 || b.Lines[0] != "Hola" || b.Lines[1] != "mundo amigo" {
		t.Fatalf("unexpected lines %q", b.Lines)
	}
	if b.StartSeconds != 0.0 || b.EndSeconds != 2.0 {
		t.Fatalf("unexpected span %.2f-%.2f", b.StartSeconds, b.EndSeconds)
	}
	if stats.Paired != 1 {
		t.Fatalf("expected one pairing, got %+v", stats)
	}
}

func TestBuildGroupingLimits(t *testing.T) {
	cases := []struct {
		name    string
		phrases []transcript.Phrase
		want    int
	}{
		{"gap too large", []transcript.Phrase{phrase("uno dos", 0, 1), phrase("tres", 1.7, 2.5)}, 2},
		{"too many words", []transcript.Phrase{phrase("uno dos tres cuatro", 0, 1), phrase("cinco seis siete ocho", 1.1, 2.2)}, 2},
		{"too many chars", []transcript.Phrase{phrase("extraordinariamente complicadísimo", 0, 1), phrase("inconmensurablemente", 1.1, 2.2)}, 2},
		{"within limits", []transcript.Phrase{phrase("uno dos tres", 0, 1), phrase("cuatro cinco", 1.5, 2.2)}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blocks, _ := Build(tc.phrases, defaultOptions())
			if len(blocks) != tc.want {
				t.Fatalf("expected %d blocks, got %d: %+v", tc.want, len(blocks), blocks)
			}
		})
	}
}

func TestBuildPartitionsEveryPhrase(t *testing.T) {
	var phrases []transcript.Phrase
	cursor := 0.0
	for i := 0; i < 23; i++ {
		length := 0.3 + float64(i%5)*0.4
		gap := 0.1 + float64(i%3)*0.35
		text := fmt.Sprintf("frase numero %d", i)
		if i%4 == 0 {
			text = fmt.Sprintf("una frase bastante más larga que la media %d", i)
		}
		phrases = append(phrases, phrase(text, cursor, cursor+length))
		cursor += length + gap
	}
	opts := defaultOptions()
	blocks, _ := Build(phrases, opts)

	next := 0
	for bi, b := range blocks {
		if len(b.Lines) == 0 || len(b.Lines) > MaxLines {
			t.Fatalf("block %d has %d lines", bi, len(b.Lines))
		}
		if b.Chars() > opts.MaxCombinedChars {
			t.Fatalf("block %d exceeds char limit: %d", bi, b.Chars())
		}
		for _, idx := range b.PhraseIndices {
			if idx != next {
				t.Fatalf("block %d: expected phrase %d, got %d", bi, next, idx)
			}
			next++
		}
	}
	if next != len(phrases) {
		t.Fatalf("covered %d of %d phrases", next, len(phrases))
	}
}

func TestBuildMergesShortBlockIntoFollowing(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("Primero esto es soporte", 0, 2),
		phrase("y luego esto también", 3, 5),
		phrase("Ya", 6, 6.2),
		phrase("llega", 7, 8.5),
	}
	blocks, stats := Build(phrases, defaultOptions())
	if stats.Merged != 1 {
		t.Fatalf("expected one merge, got %+v", stats)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	last := blocks[2]
	if len(last.PhraseIndices) != 2 || last.PhraseIndices[0] != 2 || last.PhraseIndices[1] != 3 {
		t.Fatalf("unexpected merged indices %v", last.PhraseIndices)
	}
	if last.StartSeconds != 6 || last.EndSeconds != 8.5 {
		t.Fatalf("unexpected merged span %.2f-%.2f", last.StartSeconds, last.EndSeconds)
	}
}

func TestBuildMergesShortLastBlockIntoPrevious(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("Una frase de apertura", 0, 2),
		phrase("Otra frase bastante clara", 3, 5),
		phrase("Fin", 6, 6.3),
	}
	blocks, stats := Build(phrases, defaultOptions())
	if stats.Merged != 1 || len(blocks) != 2 {
		t.Fatalf("expected merge into previous, got %d blocks %+v", len(blocks), stats)
	}
	if got := blocks[1].PhraseIndices; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected indices %v", got)
	}
	if blocks[1].EndSeconds != 6.3 {
		t.Fatalf("expected merged end 6.3, got %.2f", blocks[1].EndSeconds)
	}
}

func TestBuildStretchesShortBlockWhenMergeDoesNotFit(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("uno dos", 0, 0.5),
		phrase("tres cuatro", 0.6, 1.5),
		phrase("Rápido", 3.0, 3.2),
		phrase("cinco seis", 5, 5.5),
		phrase("siete ocho", 5.6, 7),
	}
	blocks, stats := Build(phrases, defaultOptions())
	if stats.Stretched != 1 || stats.Merged != 0 {
		t.Fatalf("expected a stretch and no merge, got %+v", stats)
	}
	short := blocks[1]
	if math.Abs(short.EndSeconds-3.6) > 1e-9 {
		t.Fatalf("expected stretch to 3.6s, got %.3f", short.EndSeconds)
	}
}

func TestBuildUntimedIgnoresTiming(t *testing.T) {
	opts := defaultOptions()
	opts.Untimed = true
	phrases := transcript.SplitScript("Hola. Mundo amigo. Esto es una frase que no cabe con otra más.")
	blocks, stats := Build(phrases, opts)
	if stats.Merged != 0 || stats.Stretched != 0 {
		t.Fatalf("untimed build must not apply duration rules: %+v", stats)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if len(blocks[0].Lines) != 2 {
		t.Fatalf("expected first two sentences paired, got %q", blocks[0].Lines)
	}
}

func TestBuildWrapsOverlongPhrase(t *testing.T) {
	long := "esta frase individual es tan larga que no entra en una sola línea de texto"
	blocks, stats := Build([]transcript.Phrase{phrase(long, 0, 4)}, defaultOptions())
	if stats.Wrapped != 1 {
		t.Fatalf("expected wrap, got %+v", stats)
	}
	if len(blocks) != 1 || len(blocks[0].Lines) != 2 {
		t.Fatalf("expected one two-line block, got %+v", blocks)
	}
	if blocks[0].Text() != long {
		t.Fatalf("wrapping must preserve text, got %q", blocks[0].Text())
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("Hola", 0, 0.8),
		phrase("mundo", 1.0, 1.6),
		phrase("¿Listo?", 2.5, 3.4),
	}
	a, _ := Build(phrases, defaultOptions())
	b, _ := Build(phrases, defaultOptions())
	if fmt.Sprintf("%+v", a) != fmt.Sprintf("%+v", b) {
		t.Fatalf("expected identical output\n%+v\n%+v", a, b)
	}
}

func TestBuildShiftsFollowingBlockWhenShortBlockCannotMerge(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("Primera frase del video", 0, 1.5),
		phrase("que abre todo", 1.6, 3.9),
		phrase("Dato uno", 4.0, 4.2),
		phrase("dato dos", 4.2, 4.4),
		phrase("y aquí termina la historia completa", 4.4, 7.0),
	}
	opts := defaultOptions()
	blocks, stats := Build(phrases, opts)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}
	if stats.Merged != 0 || stats.Stretched != 1 || stats.Shifted != 1 {
		t.Fatalf("expected one stretch and one shift, got %+v", stats)
	}
	if got := durationFrames(blocks[1], opts.FPS); got < opts.MinBlockDurationFrames {
		t.Fatalf("short block lasts %d frames, want at least %d", got, opts.MinBlockDurationFrames)
	}
	if math.Abs(blocks[2].StartSeconds-4.6) > 1e-9 || blocks[2].StartSeconds < blocks[1].EndSeconds {
		t.Fatalf("following block starts at %.3f, short block ends at %.3f", blocks[2].StartSeconds, blocks[1].EndSeconds)
	}
	if blocks[2].EndSeconds != 7.0 {
		t.Fatalf("following block end moved to %.3f", blocks[2].EndSeconds)
	}
}

func TestBuildRefusesMergeOverWordLimit(t *testing.T) {
	phrases := []transcript.Phrase{
		phrase("seis palabras muy bien contadas hoy", 0, 2),
		phrase("Vale ya", 3.0, 3.3),
		phrase("seis palabras bien contadas aquí también", 5, 7),
	}
	blocks, stats := Build(phrases, defaultOptions())
	if stats.Merged != 0 || len(blocks) != 3 {
		t.Fatalf("expected no merge past the word limit, got %d blocks %+v", len(blocks), stats)
	}
	if stats.Stretched != 1 || math.Abs(blocks[1].EndSeconds-3.6) > 1e-9 {
		t.Fatalf("expected the short block stretched to 3.6s, got %.3f %+v", blocks[1].EndSeconds, stats)
	}
}

func TestReindexCoversDroppedPhrases(t *testing.T) {
	raw := []transcript.Phrase{
		phrase("  ", 0, 0.1),
		phrase("Hola", 0.2, 0.8),
		phrase("", 0.85, 0.9),
		phrase("mundo amigo", 1.0, 2.0),
		phrase("Otra idea distinta", 4, 6),
		phrase(" ", 6.1, 7),
	}
	phrases, origin := transcript.NormalizeWithOrigin(raw)
	if len(phrases) != 3 || fmt.Sprint(origin) != "[1 3 4]" {
		t.Fatalf("unexpected normalisation %+v origin %v", phrases, origin)
	}
	blocks, _ := Build(phrases, defaultOptions())
	Reindex(blocks, origin, len(raw))

	want := []string{"[0 1 2 3]", "[4 5]"}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(blocks), blocks)
	}
	for i, b := range blocks {
		if got := fmt.Sprint(b.PhraseIndices); got != want[i] {
			t.Fatalf("block %d indices %s, want %s", i, got, want[i])
		}
	}
	if blocks[0].StartSeconds != 0.2 || blocks[1].EndSeconds != 6 {
		t.Fatalf("timing must come from spoken phrases, got %.2f and %.2f", blocks[0].StartSeconds, blocks[1].EndSeconds)
	}
}
