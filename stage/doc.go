// Package stage runs resumable, artifact-producing work.
//
// A Runner walks an ordered list of items. Each item names the artifact it
// produces. Items whose artifact already exists are skipped without calling
// the handler; the others are handled and their output is stored
// atomically. A failing item is reported and logged, and the runner moves
// on to the next one.
//
// Because completion is decided only by artifact existence, running the
// same items again after an interruption performs exactly the work that is
// still missing.
package stage
