package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Catalog groups model ids by the stage they can serve.
type Catalog struct {
	TTS           []string
	Transcription []string
	Chat          []string
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return NewListerWithClient(apiKey, openai.NewClient(apiKey))
}

// NewListerWithClient uses an existing client.
func NewListerWithClient(apiKey string, client *openai.Client) *Lister {
	return &Lister{apiKey: apiKey, client: client}
}

// List fetches the models and sorts them into stages.
func (l *Lister) List(ctx context.Context) (Catalog, error) {
	if l.apiKey == "" {
		return Catalog{}, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .kikitori.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list models: %w", err)
	}

	var c Catalog
	for _, model := range models.Models {
		id := model.ID
		switch {
		case strings.Contains(id, "whisper") || strings.Contains(id, "transcribe"):
			c.Transcription = append(c.Transcription, id)
		case strings.Contains(id, "tts"):
			c.TTS = append(c.TTS, id)
		case strings.HasPrefix(id, "gpt-") && !strings.Contains(id, "audio") && !strings.Contains(id, "realtime"):
			c.Chat = append(c.Chat, id)
		}
	}
	sort.Strings(c.TTS)
	sort.Strings(c.Transcription)
	sort.Strings(c.Chat)
	return c, nil
}

// Rows flattens the catalog into (stage, model) pairs for display.
func (c Catalog) Rows() [][]string {
	var rows [][]string
	add := func(stage string, ids []string) {
		if len(ids) == 0 {
			rows = append(rows, []string{stage, "(none)"})
		}
		for _, id := range ids {
			rows = append(rows, []string{stage, id})
		}
	}
	add("speech synthesis", c.TTS)
	add("transcription", c.Transcription)
	add("translation", c.Chat)
	return rows
}
