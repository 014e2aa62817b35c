// Package tts adapts text-to-speech backends to a single Provider interface
// that returns PCM clips. Google Cloud Text-to-Speech is the default
// backend; OpenAI, Gemini and a local espeak-ng fallback are available.
// Providers can be wrapped with an on-disk cache, retry with circuit
// breaking, and a fallback provider.
package tts
