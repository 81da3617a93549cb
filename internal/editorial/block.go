package editorial

import (
	"strings"

	"reeltime/internal/transcript"
)

// Weight is the rhetorical role of a block.
type Weight string

const (
	WeightHeadline Weight = "headline"
	WeightSupport  Weight = "support"
	WeightPunch    Weight = "punch"
)

// MaxLines is the most lines a block may carry on screen.
const MaxLines = 2

// Block is a one or two line caption derived from consecutive phrases.
type Block struct {
	Lines         []string `json:"lines"`
	Weight        Weight   `json:"weight"`
	Rule          string   `json:"rule"`
	PhraseIndices []int    `json:"phrase_indices"`
	WordCount     int      `json:"word_count"`
	StartSeconds  float64  `json:"start_seconds"`
	EndSeconds    float64  `json:"end_seconds"`
}

// Text returns the block lines joined by a space.
func (b Block) Text() string {
	return strings.Join(b.Lines, " ")
}

// Chars returns the combined character count across all lines.
func (b Block) Chars() int {
	total := 0
	for _, line := range b.Lines {
		total += transcript.CharCount(line)
	}
	return total
}

// Duration returns the block's spoken length in seconds.
func (b Block) Duration() float64 {
	if b.EndSeconds <= b.StartSeconds {
		return 0
	}
	return b.EndSeconds - b.StartSeconds
}

func (b Block) merge(next Block) Block {
	out := Block{
		Lines:         append(append([]string{}, b.Lines...), next.Lines...),
		PhraseIndices: append(append([]int{}, b.PhraseIndices...), next.PhraseIndices...),
		WordCount:     b.WordCount + next.WordCount,
		StartSeconds:  b.StartSeconds,
		EndSeconds:    next.EndSeconds,
	}
	if next.StartSeconds < out.StartSeconds {
		out.StartSeconds = next.StartSeconds
	}
	if b.EndSeconds > out.EndSeconds {
		out.EndSeconds = b.EndSeconds
	}
	return out
}
