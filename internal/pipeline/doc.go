// Package pipeline runs one acquisition-to-deck conversion: acquire audio,
// transcribe it, extract vocabulary, translate it and assemble the deck.
//
// Stages run strictly in sequence. The acquired audio file belongs to the
// run that created it and is deleted before the run returns, whatever the
// outcome.
package pipeline
