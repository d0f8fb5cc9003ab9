package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"codeberg.org/snonux/kikitori/internal/acquire"
	"codeberg.org/snonux/kikitori/internal/anki"
	"codeberg.org/snonux/kikitori/internal/archive"
	"codeberg.org/snonux/kikitori/internal/audio"
	"codeberg.org/snonux/kikitori/internal/deps"
	"codeberg.org/snonux/kikitori/internal/pipeline"
	"codeberg.org/snonux/kikitori/internal/transcribe"
	"codeberg.org/snonux/kikitori/internal/translation"
	"codeberg.org/snonux/kikitori/internal/vocab"
)

// Keys carries the API keys for the engines.
type Keys struct {
	OpenAI string
	Gemini string
}

// BuildOptions selects the optional parts of a runner.
type BuildOptions struct {
	// Audio builds the acquisition and transcription stages.
	Audio bool
	// KeepPrevious archives the previous deck before it is replaced.
	KeepPrevious bool
}

// BuildRunner wires the pipeline stages from s.
func BuildRunner(ctx context.Context, s Settings, keys Keys, opts BuildOptions, logger *slog.Logger) (*pipeline.Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var stages pipeline.Stages

	if opts.Audio {
		engine, err := NewTranscriptionEngine(s, keys)
		if err != nil {
			return nil, err
		}
		stages.Acquirer = acquire.New(s.Acquire, acquire.WithLogger(logger))
		stages.Transcriber = transcribe.NewAdapter(engine, logger)
	}

	tok, err := vocab.NewKagomeTokenizer()
	if err != nil {
		return nil, err
	}
	stages.Extractor = vocab.NewExtractor(tok, logger)

	tengine, err := NewTranslationEngine(ctx, s, keys)
	if err != nil {
		return nil, err
	}
	stages.Translator = translation.NewClient(tengine, s.Translation, logger)

	acfg := s.Audio
	acfg.OpenAIKey = keys.OpenAI
	synth, err := audio.NewProvider(&acfg, logger)
	if err != nil {
		return nil, fmt.Errorf("audio provider: %w", err)
	}

	deckCfg := anki.Config{
		DeckName:   s.DeckName,
		OutputPath: s.DeckOutput,
		ClipDir:    filepath.Join(s.WorkDir, "clips"),
		Workers:    s.AudioWorkers,
	}
	if opts.KeepPrevious {
		deckCfg.Archive = func(existing string) error {
			dest, err := archive.ArchiveDeck(existing, archive.Dir(existing))
			if err == nil {
				logger.Info("previous deck archived", "path", dest)
			}
			return err
		}
	}
	stages.Assembler, err = anki.NewAssembler(synth, deckCfg, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(stages, s.Language, logger)
}

// NewTranscriptionEngine returns the configured speech-to-text engine.
func NewTranscriptionEngine(s Settings, keys Keys) (transcribe.Engine, error) {
	switch s.TranscribeEngine {
	case "openai", "":
		e, err := transcribe.NewOpenAIEngine(keys.OpenAI, s.TranscribeModel)
		if err != nil {
			return nil, fmt.Errorf("transcription engine: %w", err)
		}
		return e, nil
	case "whispercpp":
		if s.WhisperCppModel == "" {
			return nil, fmt.Errorf("transcription engine: transcribe.whispercpp_model is not set")
		}
		e := transcribe.NewWhisperCppEngine(s.WhisperCppBin, s.WhisperCppModel, s.FFmpeg)
		e.WithThreads(s.WhisperThreads)
		return e, nil
	default:
		return nil, fmt.Errorf("unknown transcription engine: %s", s.TranscribeEngine)
	}
}

// NewTranslationEngine returns the configured translation engine.
func NewTranslationEngine(ctx context.Context, s Settings, keys Keys) (translation.Engine, error) {
	switch s.TranslateEngine {
	case "openai", "":
		e, err := translation.NewOpenAIEngine(keys.OpenAI, s.TranslateModel)
		if err != nil {
			return nil, fmt.Errorf("translation engine: %w", err)
		}
		return e, nil
	case "gemini":
		e, err := translation.NewGeminiEngine(ctx, keys.Gemini, s.TranslateModel, "")
		if err != nil {
			return nil, fmt.Errorf("translation engine: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown translation engine: %s", s.TranslateEngine)
	}
}

// Dependencies returns the external tools used with settings s.
func Dependencies(s Settings) []deps.Binary {
	ffmpeg := s.FFmpeg
	if ffmpeg == "" {
		ffmpeg = transcribe.FFmpegCommand
	}
	return deps.Defaults(s.Acquire.YTDLPBinary, ffmpeg, audio.ESpeakCommand, s.WhisperCppBin)
}
