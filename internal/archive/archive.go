// Package archive keeps previous deck packages instead of overwriting them.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Dir returns the default archive directory for a deck: an "archive"
// directory next to it.
func Dir(deckPath string) string {
	return filepath.Join(filepath.Dir(deckPath), "archive")
}

// ArchiveDeck moves an existing deck file into archiveDir under a
// timestamped name and returns the new path.
func ArchiveDeck(deckPath, archiveDir string) (string, error) {
	info, err := os.Stat(deckPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("deck does not exist: %s", deckPath)
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("deck path is a directory: %s", deckPath)
	}

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(deckPath)
	stem := strings.TrimSuffix(filepath.Base(deckPath), ext)
	now := time.Now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405"), ext))

	// Two archives within the same second get microseconds appended.
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, now.Format("20060102-150405.000000"), ext))
	}

	if err := os.Rename(deckPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive deck: %w", err)
	}
	return archivePath, nil
}
