package transcript

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Word is a single transcribed word with its spoken span in seconds.
type Word struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// Phrase is a transcribed span of speech. Untimed phrases (script fallback)
// carry zero start and end values and no words.
type Phrase struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Words        []Word  `json:"words,omitempty"`
}

// WordCount returns the number of words in the phrase, preferring the
// transcribed word list when present.
func (p Phrase) WordCount() int {
	if len(p.Words) > 0 {
		return len(p.Words)
	}
	return len(strings.Fields(p.Text))
}

// Duration returns the spoken length of the phrase in seconds.
func (p Phrase) Duration() float64 {
	if p.EndSeconds <= p.StartSeconds {
		return 0
	}
	return p.EndSeconds - p.StartSeconds
}

// ErrUnordered reports phrases whose timing cannot be consumed in sequence.
var ErrUnordered = errors.New("phrases out of order")

// NormalizeText converts text to NFC and collapses runs of whitespace.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// CharCount returns the number of user-perceived characters after
// normalisation. Combining sequences count once because NFC composes them.
func CharCount(text string) int {
	return len([]rune(NormalizeText(text)))
}

// Normalize returns a copy of phrases with normalised text. Phrases whose text
// is empty after normalisation are dropped.
func Normalize(phrases []Phrase) []Phrase {
	out, _ := NormalizeWithOrigin(phrases)
	return out
}

// NormalizeWithOrigin is Normalize that also reports, for each kept phrase,
// its index in phrases.
func NormalizeWithOrigin(phrases []Phrase) ([]Phrase, []int) {
	if len(phrases) == 0 {
		return nil, nil
	}
	out := make([]Phrase, 0, len(phrases))
	origin := make([]int, 0, len(phrases))
	for i, phrase := range phrases {
		text := NormalizeText(phrase.Text)
		if text == "" {
			continue
		}
		var words []Word
		for _, w := range phrase.Words {
			if wt := NormalizeText(w.Text); wt != "" {
				words = append(words, Word{Text: wt, StartSeconds: w.StartSeconds, EndSeconds: w.EndSeconds})
			}
		}
		out = append(out, Phrase{
			Text:         text,
			StartSeconds: phrase.StartSeconds,
			EndSeconds:   phrase.EndSeconds,
			Words:        words,
		})
		origin = append(origin, i)
	}
	return out, origin
}

// Validate checks that phrase timing is finite, non-negative and ordered by
// start time. Slight overlaps between neighbours are tolerated.
func Validate(phrases []Phrase) error {
	prevStart := math.Inf(-1)
	for i, phrase := range phrases {
		if !finite(phrase.StartSeconds) || !finite(phrase.EndSeconds) {
			return fmt.Errorf("phrase %d: non-finite timestamp", i)
		}
		if phrase.StartSeconds < 0 {
			return fmt.Errorf("phrase %d: negative start %.3f", i, phrase.StartSeconds)
		}
		if phrase.EndSeconds < phrase.StartSeconds {
			return fmt.Errorf("phrase %d: end %.3f before start %.3f", i, phrase.EndSeconds, phrase.StartSeconds)
		}
		if phrase.StartSeconds < prevStart {
			return fmt.Errorf("%w: phrase %d starts at %.3f before previous start %.3f", ErrUnordered, i, phrase.StartSeconds, prevStart)
		}
		prevStart = phrase.StartSeconds
	}
	return nil
}

// Timed reports whether the phrases carry real transcription timing.
func Timed(phrases []Phrase) bool {
	for _, phrase := range phrases {
		if phrase.EndSeconds > 0 {
			return true
		}
	}
	return false
}

// End returns the end time of the last phrase, or zero when empty.
func End(phrases []Phrase) float64 {
	if len(phrases) == 0 {
		return 0
	}
	return phrases[len(phrases)-1].EndSeconds
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
