package tts

import "sort"

// PresetVoices returns the fixed voice set of a backend without a voice
// listing API. It returns nil for backends that list voices remotely.
func PresetVoices(provider string) []VoiceInfo {
	var names map[string]bool
	switch provider {
	case "openai":
		names = openAIVoices
	case "gemini":
		names = geminiVoices
	default:
		return nil
	}

	infos := make([]VoiceInfo, 0, len(names))
	for name := range names {
		infos = append(infos, VoiceInfo{Name: name})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
