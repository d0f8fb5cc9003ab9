package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "openai", "espeak" or "auto"

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "nova", "sage", ...
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model
	OpenAIBaseURL     string  // optional API endpoint override

	// CacheDir, when set, keeps every synthesised clip keyed by text and
	// voice settings so repeated words are never paid for twice.
	CacheDir string

	ESpeakVoice  string
	ESpeakSpeed  int // words per minute; zero keeps the espeak-ng default
	FFmpegBinary string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "auto",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "nova",
		OpenAISpeed:       0.9,
		OpenAIInstruction: "You are speaking standard Japanese (標準語). Read the word once with natural Tokyo pitch accent, slowly and clearly for language learners.",
		ESpeakVoice:       "ja",
	}
}

// NewProvider creates the provider selected by config. "auto" uses OpenAI
// when a key is configured, with espeak-ng as fallback, and espeak-ng
// alone otherwise.
func NewProvider(config *Config, logger *slog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAIProvider(config, logger)
	case "espeak":
		return newESpeak(config), nil
	case "auto", "":
		espeak := newESpeak(config)
		if config.OpenAIKey == "" {
			return espeak, nil
		}
		primary, err := NewOpenAIProvider(config, logger)
		if err != nil {
			return nil, err
		}
		return NewProviderWithFallback(primary, espeak, logger), nil
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

func newESpeak(config *Config) *ESpeakProvider {
	p := NewESpeakProvider(config.ESpeakVoice, config.FFmpegBinary)
	if config.ESpeakSpeed > 0 {
		p.SetSpeed(config.ESpeakSpeed)
	}
	return p
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err == nil {
		return nil
	}
	p.logger.Warn("primary audio provider failed",
		"provider", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)
	if ferr := p.fallback.GenerateAudio(ctx, text, outputFile); ferr != nil {
		return fmt.Errorf("%s: %v; %s: %w", p.primary.Name(), err, p.fallback.Name(), ferr)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
