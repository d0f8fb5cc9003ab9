// Package anki turns translated vocabulary into an Anki deck package
// (.apkg). The Assembler synthesises one pronunciation clip per entry,
// builds one note per entry and writes notes plus the clips that actually
// exist into a single package file, so that every [sound:...] reference in
// a note resolves to a bundled media file.
package anki
