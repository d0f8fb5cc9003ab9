package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// ESpeakCommand is the espeak-ng binary.
	ESpeakCommand = "espeak-ng"
	ffmpegCommand = "ffmpeg"
)

// ESpeakProvider synthesises speech offline with espeak-ng and converts the
// WAV output to MP3 with ffmpeg.
type ESpeakProvider struct {
	voice         string
	speed         int // words per minute
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(voice, ffmpegBinary string) *ESpeakProvider {
	if voice == "" {
		voice = "ja"
	}
	if ffmpegBinary == "" {
		ffmpegBinary = ffmpegCommand
	}
	return &ESpeakProvider{voice: voice, speed: 130, ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (p *ESpeakProvider) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	p.commandRunner = runner
}

// SetSpeed updates the speech speed, clamped to what espeak-ng accepts.
func (p *ESpeakProvider) SetSpeed(speed int) {
	if speed < 80 {
		speed = 80
	} else if speed > 450 {
		speed = 450
	}
	p.speed = speed
}

func (p *ESpeakProvider) run(ctx context.Context, name string, args ...string) error {
	if p.commandRunner != nil {
		return p.commandRunner(ctx, name, args...)
	}
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// GenerateAudio generates audio using espeak-ng
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateJapaneseText(text); err != nil {
		return err
	}
	text = CleanText(text)

	wav := outputFile + ".espeak.wav"
	defer os.Remove(wav)

	if err := p.run(ctx, ESpeakCommand, "-v", p.voice, "-s", fmt.Sprint(p.speed), "-w", wav, text); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(outputFile), ".wav") {
		return os.Rename(wav, outputFile)
	}
	if err := p.run(ctx, p.ffmpegBinary, "-y", "-loglevel", "error", "-i", wav, "-acodec", "libmp3lame", outputFile); err != nil {
		os.Remove(outputFile)
		return fmt.Errorf("convert to mp3: %w", err)
	}
	return nil
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	if _, err := exec.LookPath(ESpeakCommand); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}
