// Package deps checks that the external tools kikitori shells out to are
// installed.
package deps

import (
	"os/exec"
)

// Binary describes one external tool.
type Binary struct {
	Name     string
	Purpose  string
	Required bool
}

// Status is the result of looking a binary up.
type Status struct {
	Binary
	Path  string
	Found bool
}

// LookPathFunc resolves a binary name to a path.
type LookPathFunc func(name string) (string, error)

// Defaults returns the tools used with the given binary names.
func Defaults(ytdlp, ffmpeg, espeak, whisper string) []Binary {
	return []Binary{
		{Name: ytdlp, Purpose: "video audio download", Required: true},
		{Name: ffmpeg, Purpose: "audio conversion", Required: true},
		{Name: espeak, Purpose: "offline speech synthesis", Required: false},
		{Name: whisper, Purpose: "offline transcription", Required: false},
	}
}

// Check looks up each binary. A nil lookPath uses exec.LookPath.
func Check(bins []Binary, lookPath LookPathFunc) []Status {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	out := make([]Status, 0, len(bins))
	for _, b := range bins {
		if b.Name == "" {
			continue
		}
		p, err := lookPath(b.Name)
		out = append(out, Status{Binary: b, Path: p, Found: err == nil})
	}
	return out
}

// MissingRequired reports the names of required binaries not found.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if s.Required && !s.Found {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

// Rows renders statuses for a table.
func Rows(statuses []Status) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "missing"
		if s.Found {
			state = "ok"
		} else if !s.Required {
			state = "missing (optional)"
		}
		rows = append(rows, []string{s.Name, s.Purpose, state, s.Path})
	}
	return rows
}
