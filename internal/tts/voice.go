package tts

import "strings"

// Voice selects a speaker. LanguageCode is derived from Google style
// names such as "ja-JP-Standard-A" and empty for bare names like "alloy".
type Voice struct {
	Name         string
	LanguageCode string
}

// ParseVoice builds a Voice from its name, taking the language code from
// the first two dash-separated parts
func ParseVoice(name string) Voice {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Voice{Name: name}
	}
	return Voice{Name: name, LanguageCode: parts[0] + "-" + parts[1]}
}

// Language returns the lower-case primary language subtag, e.g. "ja"
func (v Voice) Language() string {
	if v.LanguageCode == "" {
		return ""
	}
	return strings.ToLower(strings.SplitN(v.LanguageCode, "-", 2)[0])
}

func (v Voice) String() string {
	return v.Name
}

// VoiceInfo describes a voice offered by a backend
type VoiceInfo struct {
	Name              string
	LanguageCodes     []string
	Gender            string
	NaturalSampleRate int
}
