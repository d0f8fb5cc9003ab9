package transcribe

import (
	"context"
	"errors"
	"log/slog"
	"os"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// Engine is a speech-to-text backend.
type Engine interface {
	Transcribe(ctx context.Context, path, language string) (EngineResult, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, path, language string) (EngineResult, error)

func (f EngineFunc) Transcribe(ctx context.Context, path, language string) (EngineResult, error) {
	return f(ctx, path, language)
}

// Source is the audio handed to the adapter. acquire.Asset satisfies it.
type Source interface {
	Path() string
	MarkConsumed()
}

// Adapter validates the audio, calls the engine and normalises the result.
// It never deletes the audio; that belongs to the run that owns it.
type Adapter struct {
	engine Engine
	logger *slog.Logger
}

// NewAdapter returns an adapter for engine.
func NewAdapter(engine Engine, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{engine: engine, logger: logger.With("component", "transcribe")}
}

// Transcribe returns the ordered, non-empty segments of src.
func (a *Adapter) Transcribe(ctx context.Context, src Source, language string) ([]Segment, error) {
	path := src.Path()
	info, err := os.Stat(path)
	if err != nil {
		return nil, kerrors.NewTranscription("audio file unreadable", err)
	}
	if info.IsDir() {
		return nil, kerrors.NewTranscription("audio path is a directory", nil)
	}
	if info.Size() == 0 {
		return nil, kerrors.NewTranscription("audio file is empty", nil)
	}

	a.logger.Info("transcribing audio", "path", path, "language", language, "bytes", info.Size())
	res, err := a.engine.Transcribe(ctx, path, language)
	src.MarkConsumed()
	if err != nil {
		return nil, kerrors.NewTranscription("engine failed", err)
	}

	segments := Normalize(res)
	if len(segments) == 0 {
		return nil, kerrors.NewTranscription("engine returned no text", errors.New("empty transcript"))
	}
	a.logger.Info("transcription complete", "segments", len(segments))
	return segments, nil
}
