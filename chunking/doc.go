// Package chunking splits transcript text into overlapping, size-bounded
// chunks that prefer to end on sentence boundaries.
//
// All sizes and positions are measured in characters (runes), so text in
// any script is never cut inside a multi-byte character.
package chunking
