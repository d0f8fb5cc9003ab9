package anki

import (
	"fmt"
	"path/filepath"
)

// Entry is one translated vocabulary item handed to the assembler.
type Entry struct {
	Word        string
	Reading     string
	Translation string // may be empty
	Context     string // may be empty
}

// Note is an entry after synthesis. AudioFile is where its clip was
// written, or empty when synthesis failed. The file itself is gone once the
// deck is packaged; only its name is still referenced.
type Note struct {
	Entry
	AudioFile string
}

// AudioName is the media file name referenced by the note.
func (n Note) AudioName() string {
	if n.AudioFile == "" {
		return ""
	}
	return filepath.Base(n.AudioFile)
}

// AudioTag is the Anki sound reference for the note's clip, or empty.
func (n Note) AudioTag() string {
	if name := n.AudioName(); name != "" {
		return fmt.Sprintf("[sound:%s]", name)
	}
	return ""
}
