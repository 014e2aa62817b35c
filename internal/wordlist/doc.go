// Package wordlist loads flashcard word lists from plain comma-separated
// files, projects their rows into ordered word pairs and writes the
// projected pairs back out as CSV.
package wordlist
