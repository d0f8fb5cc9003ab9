// Package batch reads word lists for decks built without audio or text
// extraction.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// WordEntry represents a word with optional translation
type WordEntry struct {
	Word        string
	Translation string // empty means the translation engine is asked
}

// ReadBatchFile reads words from a file and returns WordEntry slice
// Supports formats:
// - word only: "猫" (translated by the engine)
// - with translation: "猫 = cat" (used as is)
// Blank lines and lines starting with '#' are skipped. Lines with an empty
// word part ("= cat") are ignored.
func ReadBatchFile(filename string) ([]WordEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the word list format from r.
func Parse(r io.Reader) ([]WordEntry, error) {
	var entries []WordEntry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(norm.NFKC.String(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, translation, _ := strings.Cut(line, "=")
		word = strings.TrimSpace(word)
		translation = strings.TrimSpace(translation)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		entries = append(entries, WordEntry{Word: word, Translation: translation})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return entries, nil
}
