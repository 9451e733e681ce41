// Package generation drives the three-step generation chain run for every
// chunk: term analysis, concept analysis and question generation.
//
// Each step sees the chunk text and the output of the step before it. A
// step whose generator call fails does not stop the chain; its output
// becomes a short error description that is stored and passed on like any
// other reply.
package generation
