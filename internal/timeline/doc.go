// Package timeline assembles the hero, content and outro scene boundaries of a
// narrated short, plus the music and narration audio sequences laid over them.
//
// Scene starts are a left fold over an ordered list of scene specs: each scene
// begins where the previous one ends minus its cross-fade overlap. Content is
// sized from the effective narration duration with a floor, a one second pad
// and a breathing-room beat before the outro.
package timeline
