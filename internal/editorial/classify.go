package editorial

import (
	"regexp"
	"strings"
)

// versionPattern matches model and version identifiers such as "GPT-5",
// "iPhone15", "Llama 3.1" or "v2.0".
var versionPattern = regexp.MustCompile(`\p{L}+-\d+|\p{L}\d+|\p{L}+ \d+\.\d+|\bv?\d+\.\d+`)

// Candidate is the view of a block that classification rules inspect.
type Candidate struct {
	Index     int
	Count     int
	Lines     []string
	WordCount int
}

// Rule pairs a predicate with the weight it assigns. Rules are evaluated in
// order and the first match wins.
type Rule struct {
	Name   string
	Weight Weight
	Match  func(Candidate) bool
}

// DefaultRule names the fallback classification.
const DefaultRule = "default"

func classificationRules(opts Options) []Rule {
	maxPunchWords := opts.MaxWordsForPunch
	return []Rule{
		{Name: "opening", Weight: WeightHeadline, Match: func(c Candidate) bool {
			return c.Index <= 1
		}},
		{Name: "version_number", Weight: WeightHeadline, Match: func(c Candidate) bool {
			return len(c.Lines) > 0 && versionPattern.MatchString(c.Lines[0])
		}},
		{Name: "short", Weight: WeightPunch, Match: func(c Candidate) bool {
			return c.WordCount <= maxPunchWords
		}},
		{Name: "exclamation", Weight: WeightPunch, Match: func(c Candidate) bool {
			return len(c.Lines) > 0 && endsEmphatic(c.Lines[len(c.Lines)-1])
		}},
		{Name: "closing", Weight: WeightPunch, Match: func(c Candidate) bool {
			return c.Index == c.Count-1
		}},
	}
}

// Classify returns the weight and rule name for a candidate using the
// standard rule table.
func Classify(c Candidate, opts Options) (Weight, string) {
	return classify(classificationRules(opts), c)
}

func classify(rules []Rule, c Candidate) (Weight, string) {
	for _, rule := range rules {
		if rule.Match(c) {
			return rule.Weight, rule.Name
		}
	}
	return WeightSupport, DefaultRule
}

func candidateFor(blocks []Block, i int) Candidate {
	return Candidate{
		Index:     i,
		Count:     len(blocks),
		Lines:     blocks[i].Lines,
		WordCount: blocks[i].WordCount,
	}
}

func endsEmphatic(line string) bool {
	trimmed := strings.TrimRight(strings.TrimSpace(line), `"'»”’)`)
	return strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "!")
}
