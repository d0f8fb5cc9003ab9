package vocab

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// KagomeTokenizer is a pure-Go morphological analyser using the IPA
// dictionary.
type KagomeTokenizer struct {
	t *tokenizer.Tokenizer
}

// NewKagomeTokenizer loads the dictionary and builds the tokenizer.
func NewKagomeTokenizer() (*KagomeTokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &KagomeTokenizer{t: t}, nil
}

func (k *KagomeTokenizer) Tokenize(text string) ([]Token, error) {
	raw := k.t.Tokenize(text)
	out := make([]Token, 0, len(raw))
	for _, tok := range raw {
		base, _ := tok.BaseForm()
		reading, _ := tok.Reading()
		out = append(out, Token{
			Surface: tok.Surface,
			Base:    base,
			Reading: reading,
			POS:     tok.POS(),
		})
	}
	return out, nil
}
