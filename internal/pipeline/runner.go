package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"codeberg.org/snonux/kikitori/internal"
	"codeberg.org/snonux/kikitori/internal/acquire"
	"codeberg.org/snonux/kikitori/internal/anki"
	"codeberg.org/snonux/kikitori/internal/batch"
	kerrors "codeberg.org/snonux/kikitori/internal/errors"
	"codeberg.org/snonux/kikitori/internal/transcribe"
	"codeberg.org/snonux/kikitori/internal/translation"
	"codeberg.org/snonux/kikitori/internal/vocab"
)

// Stages bundles the components a Runner drives.
type Stages struct {
	Acquirer    *acquire.Chain
	Transcriber *transcribe.Adapter
	Extractor   *vocab.Extractor
	Translator  *translation.Client
	Assembler   *anki.Assembler
}

// PreviewRow is one line of the vocabulary preview.
type PreviewRow struct {
	Word        string
	Reading     string
	Translation string
}

// Runner executes pipeline runs. Runs on one Runner are serialised because
// they share the assembler's fixed output path.
type Runner struct {
	stages   Stages
	language string
	logger   *slog.Logger

	mu sync.Mutex // serialises runs

	previewMu sync.Mutex
	preview   []PreviewRow
}

// NewRunner checks the stages and returns a runner transcribing in language.
func NewRunner(stages Stages, language string, logger *slog.Logger) (*Runner, error) {
	if stages.Extractor == nil || stages.Translator == nil || stages.Assembler == nil {
		return nil, fmt.Errorf("extractor, translator and assembler are required")
	}
	if language == "" {
		language = "ja"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stages: stages, language: language, logger: logger.With("component", "pipeline")}, nil
}

// RunFromURL downloads the audio of a remote video and builds a deck.
func (r *Runner) RunFromURL(ctx context.Context, url string) (*anki.Result, error) {
	return r.runAudio(ctx, acquire.Remote(url))
}

// RunFromFile builds a deck from a local audio or video file. The file
// itself is never modified or removed.
func (r *Runner) RunFromFile(ctx context.Context, path string) (*anki.Result, error) {
	return r.runAudio(ctx, acquire.Local(path))
}

// RunFromText skips acquisition and transcription. Bare text carries no
// source segment, so its entries have no context.
func (r *Runner) RunFromText(ctx context.Context, text string) (*anki.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("run started", "source", "text", "runes", len([]rune(text)))
	return r.fromSegments(ctx, Sentences(text), false)
}

// RunFromWordList builds a deck from explicit words. Entries that carry a
// translation skip the translation engine.
func (r *Runner) RunFromWordList(ctx context.Context, entries []batch.WordEntry) (*anki.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("run started", "source", "word list", "entries", len(entries))

	words := make([]string, 0, len(entries))
	readings := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Translation != "" {
			r.stages.Translator.Seed(e.Word, e.Translation)
		}
		reading := ""
		item, ok, err := r.stages.Extractor.Lookup(e.Word)
		if err != nil {
			return nil, err
		}
		if ok && (item.Base == e.Word || item.Surface == e.Word) {
			reading = item.Reading
		}
		words = append(words, e.Word)
		readings = append(readings, reading)
	}

	translations := r.stages.Translator.TranslateAll(ctx, words)

	out := make([]anki.Entry, len(words))
	for i, w := range words {
		out[i] = anki.Entry{Word: w, Reading: readings[i], Translation: translations[i]}
	}
	return r.assemble(ctx, out)
}

// Preview returns up to k rows of the latest run's vocabulary, or all of
// them when k <= 0. It is filled after translation and before assembly, so
// it can be read while the deck is still being packaged and stays
// available when assembly fails.
func (r *Runner) Preview(k int) []PreviewRow {
	r.previewMu.Lock()
	defer r.previewMu.Unlock()
	if k <= 0 || k > len(r.preview) {
		k = len(r.preview)
	}
	return append([]PreviewRow(nil), r.preview[:k]...)
}

// Close releases clips held by the assembler.
func (r *Runner) Close() error {
	return r.stages.Assembler.Close()
}

func (r *Runner) runAudio(ctx context.Context, loc acquire.Locator) (*anki.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stages.Acquirer == nil || r.stages.Transcriber == nil {
		return nil, fmt.Errorf("audio input requires an acquirer and a transcriber")
	}

	runID := internal.NewRunID()
	logger := r.logger.With("run", runID)
	logger.Info("run started", "source", loc.Kind().String(), "locator", loc.String())

	asset, err := r.stages.Acquirer.Acquire(ctx, runID, loc)
	if err != nil {
		return nil, err
	}
	release := func() {
		if err := asset.Delete(); err != nil {
			logger.Warn("failed to delete audio", "path", asset.Path(), "error", err)
		}
	}
	// The audio goes as soon as transcription returns; the defer covers a
	// panicking engine.
	defer release()

	segments, err := r.stages.Transcriber.Transcribe(ctx, asset, r.language)
	release()
	if err != nil {
		return nil, err
	}
	logger.Debug("transcript", "segments", len(segments), "text", transcribe.Joined(segments))

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return r.fromSegments(ctx, texts, true)
}

func (r *Runner) fromSegments(ctx context.Context, texts []string, withContext bool) (*anki.Result, error) {
	items, err := r.stages.Extractor.ExtractWithContext(texts)
	if err != nil {
		return nil, err
	}
	r.logger.Info("vocabulary extracted", "items", len(items))

	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.Base
	}
	translations := r.stages.Translator.TranslateAll(ctx, words)

	entries := make([]anki.Entry, len(items))
	for i, it := range items {
		entries[i] = anki.Entry{
			Word:        it.Base,
			Reading:     it.Reading,
			Translation: translations[i],
		}
		if withContext {
			entries[i].Context = it.Context
		}
	}
	return r.assemble(ctx, entries)
}

func (r *Runner) assemble(ctx context.Context, entries []anki.Entry) (*anki.Result, error) {
	preview := make([]PreviewRow, len(entries))
	missing := 0
	for i, e := range entries {
		preview[i] = PreviewRow{Word: e.Word, Reading: e.Reading, Translation: e.Translation}
		if e.Translation == "" {
			missing++
		}
	}
	r.previewMu.Lock()
	r.preview = preview
	r.previewMu.Unlock()
	if missing > 0 {
		r.logger.Warn("some words have no translation", "missing", missing, "total", len(entries))
	}

	if err := ctx.Err(); err != nil {
		return nil, kerrors.NewAssembly("run cancelled", err)
	}
	return r.stages.Assembler.Assemble(ctx, entries)
}

// Sentences splits text into trimmed, non-empty sentences at line breaks
// and Japanese sentence terminators, which stay attached to their sentence.
func Sentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimFunc(b.String(), unicode.IsSpace); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '\n', '\r':
			flush()
		case '。', '！', '？', '!', '?':
			b.WriteRune(r)
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}
