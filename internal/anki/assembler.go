package anki

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/kikitori/internal"
	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// Identifier space for model and deck ids.
const (
	minID = int64(1) << 30
	maxID = int64(1) << 31
)

// DefaultDeckName is used when Config.DeckName is empty.
const DefaultDeckName = "Japanese Vocabulary"

// Synthesizer produces a pronunciation clip. audio.Provider satisfies it.
type Synthesizer interface {
	GenerateAudio(ctx context.Context, text string, outputFile string) error
}

// Config configures an Assembler.
type Config struct {
	DeckName   string
	OutputPath string // fixed, overwritten on every assembly
	ClipDir    string // scoped area for synthesised clips
	Workers    int    // concurrent synthesis calls

	// Archive, when set, is called with the existing output file before it
	// is replaced.
	Archive func(existing string) error
}

// Result describes one written deck.
type Result struct {
	Path  string
	Notes []Note
	Media int
}

// Assembler writes decks. Model and deck ids are drawn once per instance so
// every deck it writes shares one note type.
type Assembler struct {
	cfg      Config
	synth    Synthesizer
	logger   *slog.Logger
	instance string
	deckID   int64
	modelID  int64

	mu      sync.Mutex
	created map[string]bool // clips written by this instance and not yet reclaimed
}

// NewAssembler creates an assembler.
func NewAssembler(synth Synthesizer, cfg Config, logger *slog.Logger) (*Assembler, error) {
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if cfg.ClipDir == "" {
		cfg.ClipDir = filepath.Dir(cfg.OutputPath)
	}
	if cfg.DeckName == "" {
		cfg.DeckName = DefaultDeckName
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Assembler{
		cfg:      cfg,
		synth:    synth,
		logger:   logger.With("component", "anki"),
		instance: uuid.NewString()[:8],
		deckID:   randomID(),
		modelID:  randomID(),
		created:  make(map[string]bool),
	}, nil
}

func randomID() int64 {
	return minID + rand.Int64N(maxID-minID)
}

// Assemble synthesises clips, builds notes and writes the deck. A failed
// clip leaves its note without audio; only output I/O failures are errors.
// The clips are removed once the deck is written, since the package holds
// its own copies, and also when writing fails.
func (a *Assembler) Assemble(ctx context.Context, entries []Entry) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reclaim()
	defer a.reclaim()

	if err := os.MkdirAll(a.cfg.ClipDir, 0755); err != nil {
		return nil, kerrors.NewAssembly("create clip directory", err)
	}

	notes := a.synthesize(ctx, entries)

	media, err := a.write(ctx, notes)
	if err != nil {
		return nil, err
	}

	a.logger.Info("deck written", "path", a.cfg.OutputPath, "notes", len(notes), "media", media)
	return &Result{Path: a.cfg.OutputPath, Notes: notes, Media: media}, nil
}

// clipPath returns the collision-free clip location for entry i.
func (a *Assembler) clipPath(i int, word string) string {
	name := fmt.Sprintf("clip_%s_%d", a.instance, i)
	if s := internal.SanitizeFilename(word); s != "" {
		name += "_" + s
	}
	return filepath.Join(a.cfg.ClipDir, name+".mp3")
}

func (a *Assembler) synthesize(ctx context.Context, entries []Entry) []Note {
	notes := make([]Note, len(entries))
	var createdMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(a.cfg.Workers)
	for i, e := range entries {
		notes[i] = Note{Entry: e}
		if a.synth == nil {
			continue
		}
		g.Go(func() error {
			path := a.clipPath(i, e.Word)
			if err := a.synth.GenerateAudio(ctx, e.Word, path); err != nil {
				a.logger.Warn("audio synthesis failed", "word", e.Word, "error", err)
				removeIfExists(path)
				return nil
			}
			if info, err := os.Stat(path); err != nil || info.Size() == 0 {
				a.logger.Warn("audio synthesis produced no file", "word", e.Word)
				removeIfExists(path)
				return nil
			}
			createdMu.Lock()
			a.created[path] = true
			createdMu.Unlock()
			notes[i].AudioFile = path
			return nil
		})
	}
	_ = g.Wait()
	return notes
}

// write packages notes into a temp file and renames it over the output
// while holding the output lock.
func (a *Assembler) write(ctx context.Context, notes []Note) (int, error) {
	out := a.cfg.OutputPath
	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, kerrors.NewAssembly("create output directory", err)
	}

	lock := flock.New(out + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return 0, kerrors.NewAssembly("lock output", err)
	}
	if !locked {
		return 0, kerrors.NewAssembly("lock output", errors.New("output is locked by another run"))
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".kikitori-*.apkg")
	if err != nil {
		return 0, kerrors.NewAssembly("create temp package", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer removeIfExists(tmpPath)

	media, err := writeAPKG(deckPackage{
		deckName: a.cfg.DeckName,
		deckID:   a.deckID,
		modelID:  a.modelID,
		notes:    notes,
	}, tmpPath)
	if err != nil {
		return 0, kerrors.NewAssembly("write package", err)
	}

	if a.cfg.Archive != nil {
		if _, err := os.Stat(out); err == nil {
			if err := a.cfg.Archive(out); err != nil {
				a.logger.Warn("failed to archive previous deck", "path", out, "error", err)
			}
		}
	}

	if err := os.Rename(tmpPath, out); err != nil {
		return 0, kerrors.NewAssembly("replace output", err)
	}
	return media, nil
}

// Close removes any clip of this instance that could not be removed
// earlier.
func (a *Assembler) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reclaim()
}

// reclaim deletes every clip this instance created. Callers hold a.mu.
func (a *Assembler) reclaim() error {
	var errs []error
	for path := range a.created {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("failed to remove clip", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		delete(a.created, path)
	}
	return errors.Join(errs...)
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove file", "path", path, "error", err)
	}
}
