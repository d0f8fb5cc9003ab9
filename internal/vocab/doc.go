// Package vocab extracts a deduplicated vocabulary list from Japanese text.
//
// Text is NFKC normalised, tokenised, and every token whose part of speech
// carries no content (particles, auxiliaries, symbols, whitespace) is
// dropped. The remaining tokens are keyed by dictionary form; the first
// occurrence of each form wins and the output keeps first-occurrence order.
package vocab
