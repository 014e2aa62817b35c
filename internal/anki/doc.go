// Package anki exports word pairs as Anki import material: a legacy CSV
// with [sound:] references, or a complete .apkg package holding the
// SQLite collection and the pair audio.
package anki
