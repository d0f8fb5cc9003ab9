package transcribe

import (
	"sort"
	"strings"
)

// Segment is one timed piece of transcript text. Start and End are seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// EngineResult is what an engine hands back. Engines in whole-file mode only
// fill Text (and Duration when known).
type EngineResult struct {
	Segments []Segment
	Text     string
	Duration float64
}

// Normalize applies the output contract to a raw engine result: text is
// trimmed, empty segments are dropped, negative starts become 0, End is
// clamped to at least Start and the result is sorted by Start (stable). A
// result with only whole-file text becomes a single segment spanning
// [0, Duration].
func Normalize(res EngineResult) []Segment {
	out := make([]Segment, 0, len(res.Segments))
	for _, seg := range res.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := seg.Start
		if start < 0 {
			start = 0
		}
		end := seg.End
		if end < start {
			end = start
		}
		out = append(out, Segment{Start: start, End: end, Text: text})
	}

	if len(out) == 0 {
		if text := strings.TrimSpace(res.Text); text != "" {
			end := res.Duration
			if end < 0 {
				end = 0
			}
			return []Segment{{Start: 0, End: end, Text: text}}
		}
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Joined concatenates segment text for callers that want one text blob.
func Joined(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}
