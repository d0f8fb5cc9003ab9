// Package transcribe wraps a speech-to-text engine and shapes its output
// into an ordered list of non-empty, timed segments. Engines are always
// driven with a fixed decoding configuration (temperature 0, no sampling
// fallback) so the same audio yields the same segment boundaries.
package transcribe
