// Package audiocurve derives gain-over-frame curves for the music bed and the
// narration from an assembled timeline.
//
// Curves are pure functions of a frame number; nothing is tabulated. The music
// bed is ducked under narration, ramps across each scene cross-fade and fades
// to silence at the end. Narration fades out just before its sequence ends.
package audiocurve
