// Package editorial groups transcribed phrases into on-screen text blocks and
// assigns each block a rhetorical weight.
//
// Grouping is a single forward scan that pairs neighbouring phrases into
// two-line blocks when they are close in time and short enough to read
// together. Blocks too brief to perceive are folded into a neighbour. Weight
// classification walks an ordered rule table so precedence between headline,
// punch and support is explicit.
package editorial
