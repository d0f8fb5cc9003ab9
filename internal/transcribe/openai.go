package transcribe

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the hosted Whisper model.
const DefaultOpenAIModel = openai.Whisper1

// OpenAIEngine transcribes through the OpenAI audio API in verbose_json
// mode, which carries per-segment timestamps.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates an engine using apiKey.
func NewOpenAIEngine(apiKey, model string) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return NewOpenAIEngineWithClient(openai.NewClient(apiKey), model), nil
}

// NewOpenAIEngineWithClient wraps an existing client.
func NewOpenAIEngineWithClient(client *openai.Client, model string) *OpenAIEngine {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIEngine{client: client, model: model}
}

func (e *OpenAIEngine) Transcribe(ctx context.Context, path, language string) (EngineResult, error) {
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       e.model,
		FilePath:    path,
		Language:    language,
		Temperature: 0,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return EngineResult{}, fmt.Errorf("openai transcription: %w", err)
	}

	res := EngineResult{Text: resp.Text, Duration: resp.Duration}
	for _, s := range resp.Segments {
		res.Segments = append(res.Segments, Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return res, nil
}
