// Package models lists the OpenAI models usable for each kikitori stage
// (speech synthesis, transcription, translation) with the configured key.
package models
