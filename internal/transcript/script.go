package transcript

import (
	"strings"
	"unicode"
)

// clauseSplitWords is the sentence length above which a sentence is further
// split at commas, semicolons and colons.
const clauseSplitWords = 8

// SplitScript breaks narration text into untimed phrases: one per sentence,
// with long sentences split at clause punctuation. An empty script yields no
// phrases.
func SplitScript(script string) []Phrase {
	text := NormalizeText(script)
	if text == "" {
		return nil
	}
	var phrases []Phrase
	for _, sentence := range splitAfter(text, isSentenceEnd) {
		if len(strings.Fields(sentence)) <= clauseSplitWords {
			phrases = append(phrases, Phrase{Text: sentence})
			continue
		}
		for _, clause := range splitAfter(sentence, isClauseEnd) {
			phrases = append(phrases, Phrase{Text: clause})
		}
	}
	return phrases
}

func splitAfter(text string, isEnd func(rune) bool) []string {
	var parts []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isEnd(r) {
			continue
		}
		// Keep runs such as "?!" or "..." together.
		if i+1 < len(runes) && isEnd(runes[i+1]) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}
	if part := strings.TrimSpace(current.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isClauseEnd(r rune) bool {
	switch r {
	case ',', ';', ':':
		return true
	}
	return isSentenceEnd(r)
}
