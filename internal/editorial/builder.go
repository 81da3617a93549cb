package editorial

import (
	"math"
	"strings"

	"reeltime/internal/transcript"
)

// Options tunes grouping and classification.
type Options struct {
	MaxGroupGapSeconds     float64
	MaxWordsForGrouping    int
	MaxCombinedChars       int
	MinBlockDurationFrames int
	MaxWordsForPunch       int
	FPS                    int
	// Untimed disables every timing rule: the gap check and the minimum
	// duration merge. Used for script phrases that carry no timestamps.
	Untimed bool
}

// Stats summarises what the builder did beyond plain grouping.
type Stats struct {
	Paired    int `json:"paired"`
	Merged    int `json:"merged"`
	Stretched int `json:"stretched"`
	Shifted   int `json:"shifted"`
	Wrapped   int `json:"wrapped"`
}

// Build groups phrases into editorial blocks. Every phrase index appears in
// exactly one block, in order. Empty input yields no blocks.
func Build(phrases []transcript.Phrase, opts Options) ([]Block, Stats) {
	var stats Stats
	if len(phrases) == 0 {
		return []Block{}, stats
	}

	blocks := group(phrases, opts, &stats)
	if !opts.Untimed && opts.MinBlockDurationFrames > 0 && opts.FPS > 0 {
		blocks = absorbShortBlocks(blocks, opts, &stats)
	}

	rules := classificationRules(opts)
	for i := range blocks {
		blocks[i].Weight, blocks[i].Rule = classify(rules, candidateFor(blocks, i))
	}
	return blocks, stats
}

func group(phrases []transcript.Phrase, opts Options, stats *Stats) []Block {
	blocks := make([]Block, 0, len(phrases))
	for i := 0; i < len(phrases); {
		if i+1 < len(phrases) && canPair(phrases[i], phrases[i+1], opts) {
			blocks = append(blocks, Block{
				Lines:         []string{phrases[i].Text, phrases[i+1].Text},
				PhraseIndices: []int{i, i + 1},
				WordCount:     phrases[i].WordCount() + phrases[i+1].WordCount(),
				StartSeconds:  phrases[i].StartSeconds,
				EndSeconds:    phrases[i+1].EndSeconds,
			})
			stats.Paired++
			i += 2
			continue
		}
		lines := []string{phrases[i].Text}
		if opts.MaxCombinedChars > 0 && transcript.CharCount(phrases[i].Text) > opts.MaxCombinedChars {
			lines = wrap(phrases[i].Text)
			if len(lines) > 1 {
				stats.Wrapped++
			}
		}
		blocks = append(blocks, Block{
			Lines:         lines,
			PhraseIndices: []int{i},
			WordCount:     phrases[i].WordCount(),
			StartSeconds:  phrases[i].StartSeconds,
			EndSeconds:    phrases[i].EndSeconds,
		})
		i++
	}
	return blocks
}

func canPair(first, second transcript.Phrase, opts Options) bool {
	if !opts.Untimed && second.StartSeconds-first.EndSeconds > opts.MaxGroupGapSeconds {
		return false
	}
	if first.WordCount()+second.WordCount() > opts.MaxWordsForGrouping {
		return false
	}
	return transcript.CharCount(first.Text)+transcript.CharCount(second.Text) <= opts.MaxCombinedChars
}

// absorbShortBlocks folds blocks shorter than the minimum display time into
// the following block, or the previous one for the last block. When neither
// merge fits the line, word and character limits the block is stretched to
// the minimum and the following block starts no earlier than its new end.
func absorbShortBlocks(blocks []Block, opts Options, stats *Stats) []Block {
	minSeconds := float64(opts.MinBlockDurationFrames) / float64(opts.FPS)
	for i := 0; i < len(blocks); {
		if durationFrames(blocks[i], opts.FPS) >= opts.MinBlockDurationFrames {
			i++
			continue
		}
		if target, ok := mergeTarget(blocks, i, opts); ok {
			lo, hi := i, target
			if target < i {
				lo, hi = target, i
			}
			blocks[lo] = blocks[lo].merge(blocks[hi])
			blocks = append(blocks[:hi], blocks[hi+1:]...)
			stats.Merged++
			i = lo
			continue
		}
		if end := blocks[i].StartSeconds + minSeconds; end > blocks[i].EndSeconds {
			blocks[i].EndSeconds = end
			stats.Stretched++
		}
		if i+1 < len(blocks) && blocks[i+1].StartSeconds < blocks[i].EndSeconds {
			next := &blocks[i+1]
			next.StartSeconds = blocks[i].EndSeconds
			next.EndSeconds = math.Max(next.EndSeconds, next.StartSeconds)
			stats.Shifted++
		}
		i++
	}
	return blocks
}

func mergeTarget(blocks []Block, i int, opts Options) (int, bool) {
	candidates := []int{i + 1, i - 1}
	if i == len(blocks)-1 {
		candidates = []int{i - 1}
	}
	for _, target := range candidates {
		if target < 0 || target >= len(blocks) {
			continue
		}
		if fits(blocks[i], blocks[target], opts) {
			return target, true
		}
	}
	return 0, false
}

func fits(a, b Block, opts Options) bool {
	if len(a.Lines)+len(b.Lines) > MaxLines {
		return false
	}
	if opts.MaxWordsForGrouping > 0 && a.WordCount+b.WordCount > opts.MaxWordsForGrouping {
		return false
	}
	return opts.MaxCombinedChars <= 0 || a.Chars()+b.Chars() <= opts.MaxCombinedChars
}

func durationFrames(b Block, fps int) int {
	return int(math.Round(b.Duration() * float64(fps)))
}

// wrap splits text into two lines at the word boundary closest to its middle.
func wrap(text string) []string {
	words := strings.Fields(text)
	if len(words) < 2 {
		return []string{text}
	}
	total := transcript.CharCount(text)
	best, bestDiff := 1, math.MaxInt
	for split := 1; split < len(words); split++ {
		left := transcript.CharCount(strings.Join(words[:split], " "))
		diff := left - (total - left)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = split, diff
		}
	}
	return []string{strings.Join(words[:best], " "), strings.Join(words[best:], " ")}
}

// Reindex rewrites block phrase indices that refer to a filtered phrase list
// so they refer to the caller's list of total phrases. origin[i] is the
// caller index of filtered phrase i. Phrases missing from origin join the
// block before them, or the first block when they lead the list, so the
// blocks still partition 0..total-1 in order.
func Reindex(blocks []Block, origin []int, total int) {
	lo := 0
	for i := range blocks {
		hi := total
		if i+1 < len(blocks) {
			hi = origin[blocks[i+1].PhraseIndices[0]]
		}
		indices := make([]int, 0, hi-lo)
		for idx := lo; idx < hi; idx++ {
			indices = append(indices, idx)
		}
		blocks[i].PhraseIndices = indices
		lo = hi
	}
}
