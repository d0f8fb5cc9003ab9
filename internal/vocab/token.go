package vocab

// Token is one morpheme as reported by a tokenizer. POS holds the
// hierarchical part-of-speech labels, most general first.
type Token struct {
	Surface string
	Base    string
	Reading string
	POS     []string
}

// Tokenizer splits text into morphemes.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
}

// TokenizerFunc adapts a function to Tokenizer.
type TokenizerFunc func(text string) ([]Token, error)

func (f TokenizerFunc) Tokenize(text string) ([]Token, error) { return f(text) }

// PartOfSpeech is the coarse word class kept on a vocabulary item.
type PartOfSpeech int

const (
	Other PartOfSpeech = iota
	Noun
	Verb
	Adjective
)

func (p PartOfSpeech) String() string {
	switch p {
	case Noun:
		return "Noun"
	case Verb:
		return "Verb"
	case Adjective:
		return "Adjective"
	default:
		return "Other"
	}
}

// Item is one vocabulary entry.
type Item struct {
	Surface string
	Base    string
	Reading string
	POS     PartOfSpeech
}

// ContextItem is an item together with the text it was first seen in.
type ContextItem struct {
	Item
	Context string
}

// noContent lists the top-level POS labels that never become vocabulary.
// 記号 is the IPA label for symbols; UniDic splits it into 補助記号 and 空白.
var noContent = map[string]bool{
	"助詞":   true,
	"助動詞":  true,
	"記号":   true,
	"補助記号": true,
	"空白":   true,
}

func classify(pos []string) PartOfSpeech {
	if len(pos) == 0 {
		return Other
	}
	switch pos[0] {
	case "名詞":
		if len(pos) > 1 && pos[1] == "形容動詞語幹" {
			return Adjective
		}
		return Noun
	case "動詞":
		return Verb
	case "形容詞", "形状詞":
		return Adjective
	default:
		return Other
	}
}
