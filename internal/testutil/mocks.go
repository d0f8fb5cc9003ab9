package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"codeberg.org/snonux/kikitori/internal/transcribe"
)

// ErrMockFailure is returned by mocks configured to fail.
var ErrMockFailure = errors.New("mock failure")

// MockTranslator is a scripted translation engine. It is safe for
// concurrent use.
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// AlwaysFail makes every call return ErrMockFailure.
	AlwaysFail bool
	// FailFirst makes the first N calls fail.
	FailFirst int

	mu    sync.Mutex
	calls []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("%s (%s->%s)", text, fromLang, toLang))
	n := len(m.calls)
	m.mu.Unlock()

	if m.AlwaysFail || n <= m.FailFirst {
		return "", ErrMockFailure
	}
	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("mock translation of %s", text), nil
}

// Calls returns the recorded calls in order.
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockSynthesizer writes a small fake mp3 for every text except those in
// FailTexts.
type MockSynthesizer struct {
	FailTexts map[string]bool

	mu    sync.Mutex
	texts []string
}

// GenerateAudio mocks speech synthesis.
func (m *MockSynthesizer) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.FailTexts[text] {
		return fmt.Errorf("synthesize %q: %w", text, ErrMockFailure)
	}
	return os.WriteFile(outputFile, MockAudioData(), 0o644)
}

// Name returns the provider name.
func (m *MockSynthesizer) Name() string { return "mock" }

// IsAvailable always succeeds.
func (m *MockSynthesizer) IsAvailable() error { return nil }

// Texts returns every text synthesis was asked for.
func (m *MockSynthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// MockTranscriber returns a fixed result or error.
type MockTranscriber struct {
	Result transcribe.EngineResult
	Err    error

	mu    sync.Mutex
	paths []string
}

// Transcribe mocks speech-to-text.
func (m *MockTranscriber) Transcribe(ctx context.Context, path, language string) (transcribe.EngineResult, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	if m.Err != nil {
		return transcribe.EngineResult{}, m.Err
	}
	return m.Result, nil
}

// Paths returns the audio paths the transcriber was given.
func (m *MockTranscriber) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// MockAudioData returns a minimal MP3 frame header.
func MockAudioData() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
