package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

type whisperXWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXSegment struct {
	Text  string         `json:"text"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// LoadWhisperX reads a WhisperX JSON transcript from disk.
func LoadWhisperX(path string) ([]Phrase, error) {
	if strings.TrimSpace(path) == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeWhisperX(file)
}

// DecodeWhisperX parses WhisperX JSON segments into normalised phrases.
// Words without alignment (WhisperX omits start/end for some tokens) inherit
// the previous word's end.
func DecodeWhisperX(r io.Reader) ([]Phrase, error) {
	var payload whisperXPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	phrases := make([]Phrase, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		words := make([]Word, 0, len(seg.Words))
		cursor := seg.Start
		for _, w := range seg.Words {
			start, end := w.Start, w.End
			if start == 0 && end == 0 {
				start, end = cursor, cursor
			}
			cursor = end
			words = append(words, Word{Text: w.Word, StartSeconds: start, EndSeconds: end})
		}
		phrases = append(phrases, Phrase{
			Text:         seg.Text,
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Words:        words,
		})
	}
	return Normalize(phrases), nil
}
