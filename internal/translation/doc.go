// Package translation translates vocabulary through a pluggable engine
// (OpenAI chat or Gemini) behind a client that never fails: every word gets
// a bounded number of attempts with a fixed delay, a shared circuit breaker
// stops hammering a dead service, and a word that still cannot be
// translated comes back as an empty string.
package translation
