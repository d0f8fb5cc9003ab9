// Package audio synthesises pronunciation clips for vocabulary items. The
// OpenAI TTS provider is the primary voice; espeak-ng is an offline
// fallback. Every provider writes one file per call and never leaves a
// partial file behind on failure.
package audio
