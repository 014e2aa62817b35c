// Package audio holds linear PCM clips in memory and assembles them into
// the spoken tracks of flashcard segments. WAV input and output go through
// go-audio/wav; conversion between sample formats and the silence padding
// between words are done here.
package audio
