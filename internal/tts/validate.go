package tts

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrEmptyText is returned when there is nothing to speak
var ErrEmptyText = errors.New("text cannot be empty")

// ValidateText checks that text contains something a voice can read
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return nil
		}
	}
	return fmt.Errorf("text %q has no letters or digits", text)
}
