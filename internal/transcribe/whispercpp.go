package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	// WhisperCppCommand is the whisper.cpp CLI binary name.
	WhisperCppCommand = "whisper-cli"
	// FFmpegCommand is used to resample audio for whisper.cpp.
	FFmpegCommand = "ffmpeg"
)

// WhisperCppEngine runs a local whisper.cpp model. Audio is first converted
// to 16 kHz mono PCM, the only input whisper.cpp accepts.
type WhisperCppEngine struct {
	binary        string
	model         string
	ffmpegBinary  string
	threads       int
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperCppEngine creates an engine for the ggml model at modelPath.
func NewWhisperCppEngine(binary, modelPath, ffmpegBinary string) *WhisperCppEngine {
	if binary == "" {
		binary = WhisperCppCommand
	}
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &WhisperCppEngine{binary: binary, model: modelPath, ffmpegBinary: ffmpegBinary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *WhisperCppEngine) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// WithThreads sets the whisper.cpp thread count. Zero keeps its default.
func (e *WhisperCppEngine) WithThreads(n int) {
	e.threads = n
}

func (e *WhisperCppEngine) run(ctx context.Context, name string, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *WhisperCppEngine) extractArgs(source, dest string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", source,
		"-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		dest,
	}
}

func (e *WhisperCppEngine) transcribeArgs(wav, outPrefix, language string) []string {
	args := []string{
		"-m", e.model,
		"-f", wav,
		"-l", language,
		"-nf",
		"-tp", "0",
		"-np",
		"-oj",
		"-of", outPrefix,
	}
	if e.threads > 0 {
		args = append(args, "-t", fmt.Sprint(e.threads))
	}
	return args
}

func (e *WhisperCppEngine) Transcribe(ctx context.Context, path, language string) (EngineResult, error) {
	if e.model == "" {
		return EngineResult{}, fmt.Errorf("whisper.cpp model path required")
	}

	// Intermediate files sit next to the run-scoped source so they share
	// its run id.
	wav := path + ".16k.wav"
	outPrefix := path + ".whisper"
	defer os.Remove(wav)
	defer os.Remove(outPrefix + ".json")

	if err := e.run(ctx, e.ffmpegBinary, e.extractArgs(path, wav)...); err != nil {
		return EngineResult{}, fmt.Errorf("extract audio: %w", err)
	}
	if err := e.run(ctx, e.binary, e.transcribeArgs(wav, outPrefix, language)...); err != nil {
		return EngineResult{}, fmt.Errorf("whisper.cpp: %w", err)
	}
	return LoadWhisperCppJSON(outPrefix + ".json")
}

type whisperCppPayload struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// LoadWhisperCppJSON reads the -oj output of whisper.cpp. Offsets are in
// milliseconds.
func LoadWhisperCppJSON(jsonPath string) (EngineResult, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return EngineResult{}, err
	}
	var payload whisperCppPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return EngineResult{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}

	var res EngineResult
	for _, t := range payload.Transcription {
		seg := Segment{
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
			Text:  t.Text,
		}
		res.Segments = append(res.Segments, seg)
		if seg.End > res.Duration {
			res.Duration = seg.End
		}
	}
	return res, nil
}
