package vocab

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// dictTokenizer splits on spaces and looks each surface up in a tiny
// dictionary: "surface" -> Token.
func dictTokenizer(dict map[string]Token) TokenizerFunc {
	return func(text string) ([]Token, error) {
		var out []Token
		for _, f := range strings.Fields(text) {
			tok, ok := dict[f]
			if !ok {
				tok = Token{Surface: f, POS: []string{"名詞", "一般"}}
			}
			tok.Surface = f
			out = append(out, tok)
		}
		return out, nil
	}
}

var testDict = map[string]Token{
	"猫":   {Base: "猫", Reading: "ネコ", POS: []string{"名詞", "一般"}},
	"が":   {Base: "が", Reading: "ガ", POS: []string{"助詞", "格助詞"}},
	"好き":  {Base: "好き", Reading: "スキ", POS: []string{"名詞", "形容動詞語幹"}},
	"です":  {Base: "です", Reading: "デス", POS: []string{"助動詞"}},
	"。":   {Base: "。", Reading: "。", POS: []string{"記号", "句点"}},
	"食べ":  {Base: "食べる", Reading: "タベ", POS: []string{"動詞", "自立"}},
	"食べる": {Base: "食べる", Reading: "タベル", POS: []string{"動詞", "自立"}},
	"高い":  {Base: "高い", Reading: "タカイ", POS: []string{"形容詞", "自立"}},
	"ね":   {Base: "ね", Reading: "ネ", POS: []string{"名詞", "一般"}},
	"パン":  {Base: "*", Reading: "*", POS: []string{"名詞", "一般"}},
}

func bases(items []Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Base)
	}
	return out
}

func TestExtract(t *testing.T) {
	e := NewExtractor(dictTokenizer(testDict), nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"particles and auxiliaries dropped", "猫 が 好き です 。", []string{"猫", "好き"}},
		{"duplicates collapse to first", "食べ 猫 食べる 猫 食べ", []string{"食べる", "猫"}},
		{"single kana dropped", "ね 高い", []string{"高い"}},
		{"only function words", "が です 。", nil},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := e.Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got := bases(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("bases = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_FieldsAndFallbacks(t *testing.T) {
	e := NewExtractor(dictTokenizer(testDict), nil)
	items, err := e.Extract("食べ 好き 高い パン")
	if err != nil {
		t.Fatal(err)
	}

	want := []Item{
		{Surface: "食べ", Base: "食べる", Reading: "タベ", POS: Verb},
		{Surface: "好き", Base: "好き", Reading: "スキ", POS: Adjective},
		{Surface: "高い", Base: "高い", Reading: "タカイ", POS: Adjective},
		{Surface: "パン", Base: "パン", Reading: "パン", POS: Noun},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items = %#v\nwant %#v", items, want)
	}
}

func TestExtract_SkipsEmptyBaseForm(t *testing.T) {
	e := NewExtractor(TokenizerFunc(func(string) ([]Token, error) {
		return []Token{
			{Surface: "ネコ", Base: "", Reading: "ネコ", POS: []string{"名詞", "一般"}},
			{Surface: "イヌ", Base: "  ", Reading: "イヌ", POS: []string{"名詞", "一般"}},
			{Surface: "パン", Base: "*", Reading: "パン", POS: []string{"名詞", "一般"}},
		}, nil
	}), nil)

	items, err := e.Extract("ネコ イヌ パン")
	if err != nil {
		t.Fatal(err)
	}
	if got := bases(items); !reflect.DeepEqual(got, []string{"パン"}) {
		t.Errorf("bases = %v, want [パン]", got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(dictTokenizer(testDict), nil)
	text := "猫 が 好き 食べる 猫 高い"
	a, _ := e.Extract(text)
	b, _ := e.Extract(text)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("second extraction differs: %v vs %v", a, b)
	}
}

func TestExtract_NormalisesInput(t *testing.T) {
	var seen string
	e := NewExtractor(TokenizerFunc(func(text string) ([]Token, error) {
		seen = text
		return nil, nil
	}), nil)
	if _, err := e.Extract("ﾈｺ ＡＢＣ"); err != nil {
		t.Fatal(err)
	}
	if seen != "ネコ ABC" {
		t.Errorf("tokenizer saw %q, want NFKC form", seen)
	}
}

func TestExtract_TokenizerError(t *testing.T) {
	e := NewExtractor(TokenizerFunc(func(string) ([]Token, error) {
		return nil, errors.New("dictionary not loaded")
	}), nil)
	_, err := e.Extract("猫")
	if !kerrors.Is(err, kerrors.ErrExtraction) {
		t.Fatalf("error = %v, want extraction error", err)
	}
}

func TestExtractWithContext(t *testing.T) {
	e := NewExtractor(dictTokenizer(testDict), nil)
	items, err := e.ExtractWithContext([]string{" 猫 が 好き ", "猫 高い"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %#v", items)
	}
	if items[0].Context != "猫 が 好き" || items[2].Base != "高い" || items[2].Context != "猫 高い" {
		t.Errorf("unexpected context pairing: %#v", items)
	}
}

func TestLookup(t *testing.T) {
	e := NewExtractor(dictTokenizer(testDict), nil)
	it, ok, err := e.Lookup("が 食べ")
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	if it.Base != "食べる" || it.POS != Verb {
		t.Errorf("Lookup() = %#v", it)
	}
	if _, ok, _ := e.Lookup("です"); ok {
		t.Error("auxiliary should not be found")
	}
}

func TestPartOfSpeechString(t *testing.T) {
	for pos, want := range map[PartOfSpeech]string{Noun: "Noun", Verb: "Verb", Adjective: "Adjective", Other: "Other"} {
		if pos.String() != want {
			t.Errorf("%d.String() = %q", pos, pos.String())
		}
	}
}
