// Package artifact names and stores the files the pipeline produces.
//
// Artifact names are pure functions of their inputs, so the existence of a
// file under its expected name is all the pipeline needs to decide whether
// a unit of work has already been done. DirStore writes artifacts
// atomically so a file is either absent or complete.
package artifact
