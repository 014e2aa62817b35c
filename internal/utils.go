package internal

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFilename creates a safe filename from a string.
// Letters and digits of any script are kept, everything else becomes '_'.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// BaseName returns the file name of path without directory and extension,
// e.g. "lists/n5_verbs.csv" becomes "n5_verbs".
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
