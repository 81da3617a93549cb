// Package transcript models transcribed narration as ordered phrases with
// optional word-level timestamps.
//
// It loads WhisperX JSON output, splits untimed scripts into caption-sized
// phrases for the fallback path, normalises text to NFC so character limits
// count what the viewer sees, and validates phrase ordering before the timing
// engine consumes it.
package transcript
