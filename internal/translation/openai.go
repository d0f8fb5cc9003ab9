package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEngine translates through the chat completion API at temperature 0.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates a new OpenAI engine
func NewOpenAIEngine(apiKey, model string) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}
	return NewOpenAIEngineWithClient(openai.NewClient(apiKey), model), nil
}

// NewOpenAIEngineWithClient wraps an existing client.
func NewOpenAIEngineWithClient(client *openai.Client, model string) *OpenAIEngine {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIEngine{client: client, model: model}
}

func (e *OpenAIEngine) Translate(ctx context.Context, text, src, dst string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: Prompt(text, src, dst),
			},
		},
		MaxTokens:   50,
		Temperature: 0,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var languageNames = map[string]string{
	"ja": "Japanese",
	"en": "English",
	"id": "Indonesian",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"zh": "Chinese",
	"ko": "Korean",
}

// LanguageName returns the English name of an ISO 639-1 code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// Prompt is the instruction sent to LLM engines.
func Prompt(text, src, dst string) string {
	return fmt.Sprintf("Translate the %s word '%s' to %s. Respond with only the %s translation, nothing else.",
		LanguageName(src), text, LanguageName(dst), LanguageName(dst))
}
