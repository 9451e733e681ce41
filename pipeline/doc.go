// Package pipeline turns transcripts into per-chunk quiz artifacts.
//
// An Orchestrator discovers transcript files, splits each transcript into
// overlapping chunks, runs the generation chain for every chunk that has no
// artifact yet and writes one ChunkResult per chunk. Existing artifacts are
// never regenerated, so an interrupted run resumes where it stopped.
//
// Each transcript moves through these states:
//
//	DISCOVERED -> SPLIT -> (per chunk: SKIPPED | GENERATING -> DONE | FAILED) -> COMPLETE
//
// A transcript that cannot be read or decoded is FAILED on its own; the
// remaining transcripts are still processed.
package pipeline
