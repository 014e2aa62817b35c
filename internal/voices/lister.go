package voices

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abhandary/JLPT/internal/tts"
)

// Source lists voices remotely; *tts.GoogleProvider implements it
type Source interface {
	ListVoices(ctx context.Context, languageCode string) ([]tts.VoiceInfo, error)
}

// Lister prints voice listings
type Lister struct {
	provider string
	source   Source
	out      io.Writer
}

// NewLister creates a lister for provider. source may be nil for
// providers with a fixed voice set.
func NewLister(provider string, source Source, out io.Writer) *Lister {
	return &Lister{provider: provider, source: source, out: out}
}

// List prints the voices for languageCode (all languages when empty)
func (l *Lister) List(ctx context.Context, languageCode string) error {
	if presets := tts.PresetVoices(l.provider); presets != nil {
		fmt.Fprintf(l.out, "Available %s voices (language independent):\n", l.provider)
		for _, v := range presets {
			fmt.Fprintf(l.out, "  %s\n", v.Name)
		}
		return nil
	}

	if l.source == nil {
		return fmt.Errorf("provider %s cannot list voices", l.provider)
	}

	voices, err := l.source.ListVoices(ctx, languageCode)
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		fmt.Fprintf(l.out, "No voices found for %q\n", languageCode)
		return nil
	}

	groups := Group(voices)
	languages := make([]string, 0, len(groups))
	for lang := range groups {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	fmt.Fprintf(l.out, "Available %s voices:\n", l.provider)
	for _, lang := range languages {
		fmt.Fprintf(l.out, "\n%s:\n", lang)
		for _, v := range groups[lang] {
			fmt.Fprintf(l.out, "  %-32s %-8s %d Hz\n", v.Name, strings.ToLower(v.Gender), v.NaturalSampleRate)
		}
	}
	return nil
}

// Group buckets voices by their first language code
func Group(voices []tts.VoiceInfo) map[string][]tts.VoiceInfo {
	groups := make(map[string][]tts.VoiceInfo)
	for _, v := range voices {
		lang := "unknown"
		if len(v.LanguageCodes) > 0 {
			lang = v.LanguageCodes[0]
		}
		groups[lang] = append(groups[lang], v)
	}
	return groups
}
