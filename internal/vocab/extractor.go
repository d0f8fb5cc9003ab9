package vocab

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// Extractor turns text into vocabulary items using a Tokenizer.
type Extractor struct {
	tokenizer Tokenizer
	logger    *slog.Logger
}

// NewExtractor returns an extractor backed by tokenizer.
func NewExtractor(tokenizer Tokenizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{tokenizer: tokenizer, logger: logger.With("component", "vocab")}
}

// Extract returns the unique content words of text in first-occurrence
// order. Text without content words yields an empty result, not an error.
func (e *Extractor) Extract(text string) ([]Item, error) {
	seen := make(map[string]bool)
	items, err := e.collect(text, seen)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted vocabulary", "items", len(items))
	return items, nil
}

// ExtractWithContext extracts from each text in turn, deduplicating across
// all of them, and records the text each item first appeared in.
func (e *Extractor) ExtractWithContext(texts []string) ([]ContextItem, error) {
	seen := make(map[string]bool)
	var out []ContextItem
	for _, text := range texts {
		items, err := e.collect(text, seen)
		if err != nil {
			return nil, err
		}
		context := strings.TrimSpace(text)
		for _, it := range items {
			out = append(out, ContextItem{Item: it, Context: context})
		}
	}
	e.logger.Debug("extracted vocabulary with context", "texts", len(texts), "items", len(out))
	return out, nil
}

// Lookup returns the details of the first content token of word.
func (e *Extractor) Lookup(word string) (Item, bool, error) {
	tokens, err := e.tokenize(word)
	if err != nil {
		return Item{}, false, err
	}
	for _, tok := range tokens {
		if it, ok := toItem(tok); ok {
			return it, true, nil
		}
	}
	return Item{}, false, nil
}

func (e *Extractor) collect(text string, seen map[string]bool) ([]Item, error) {
	tokens, err := e.tokenize(text)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, tok := range tokens {
		it, ok := toItem(tok)
		if !ok || seen[it.Base] || !longEnough(it.Base) {
			continue
		}
		seen[it.Base] = true
		items = append(items, it)
	}
	return items, nil
}

func (e *Extractor) tokenize(text string) ([]Token, error) {
	text = norm.NFKC.String(text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	tokens, err := e.tokenizer.Tokenize(text)
	if err != nil {
		return nil, kerrors.NewExtraction("tokenizer failed", err)
	}
	return tokens, nil
}

// toItem maps a token to an item, reporting false for tokens that carry no
// content.
func toItem(tok Token) (Item, bool) {
	surface := strings.TrimSpace(tok.Surface)
	if surface == "" {
		return Item{}, false
	}
	if len(tok.POS) > 0 && noContent[tok.POS[0]] {
		return Item{}, false
	}

	base := strings.TrimSpace(tok.Base)
	if base == "" {
		return Item{}, false
	}
	if base == "*" {
		base = surface
	}
	reading := strings.TrimSpace(tok.Reading)
	if reading == "" || reading == "*" {
		reading = surface
	}

	return Item{
		Surface: surface,
		Base:    base,
		Reading: reading,
		POS:     classify(tok.POS),
	}, true
}

// longEnough drops one-character forms, except a single kanji which is a
// complete word on its own (猫, 本, 山).
func longEnough(base string) bool {
	if utf8.RuneCountInString(base) >= 2 {
		return true
	}
	r, _ := utf8.DecodeRuneInString(base)
	return unicode.Is(unicode.Han, r)
}
