// Package pipeline runs the word lists of a batch through projection,
// speech synthesis, clip assembly, caption rendering and concatenation,
// writing the artifacts under one output root.
package pipeline
