// Package duration reconciles the narration length estimated by speech
// synthesis with the length observed in its transcription.
//
// The reconciled value is the single authoritative narration duration used by
// every downstream timing calculation. It never exceeds the platform cap and
// falls back to the estimate whenever no usable transcription exists.
package duration
