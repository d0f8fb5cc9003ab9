package anki

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV writes notes as a CSV file for Anki's text importer. Audio
// columns carry the [sound:...] reference; the clip files themselves must be
// copied into Anki's media folder separately.
func WriteCSV(notes []Note, outputPath string, includeHeaders bool) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err := writeRecords(csv.NewWriter(file), notes, includeHeaders); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeRecords(writer *csv.Writer, notes []Note, includeHeaders bool) error {
	if includeHeaders {
		if err := writer.Write(fieldNames); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, n := range notes {
		record := []string{n.Word, n.Reading, n.Translation, n.Context, n.AudioTag()}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write note: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
