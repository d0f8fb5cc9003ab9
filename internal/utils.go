package internal

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// NewRunID returns a short random identifier used to scope the transient
// files of one pipeline run (or one assembler instance) inside the shared
// work directory.
func NewRunID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:12]
}

// SanitizeFilename keeps letters, digits, spaces, hyphens and underscores
// and drops everything else. Japanese script counts as letters.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isFilenameRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isFilenameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == ' ' || r == '-' || r == '_'
}
