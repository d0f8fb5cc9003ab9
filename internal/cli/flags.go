package cli

// Flags holds all command-line flag values
type Flags struct {
	// Input (exactly one of these, or a positional text argument)
	URL       string
	File      string
	Text      string
	BatchFile string

	// General flags
	CfgFile      string
	WorkDir      string
	Output       string
	DeckName     string
	Preview      int
	AnkiCSV      bool
	KeepPrevious bool
	ListModels   bool
	CheckDeps    bool

	// Stage selection
	Language         string
	TargetLanguage   string
	TranscribeEngine string
	TranslateEngine  string
	AudioProvider    string
	Proxy            string
	Cookies          string

	// Logging
	LogLevel  string
	LogFormat string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DeckName:         "Japanese Vocabulary",
		Preview:          10,
		Language:         "ja",
		TargetLanguage:   "en",
		TranscribeEngine: "openai",
		TranslateEngine:  "openai",
		AudioProvider:    "auto",
		LogLevel:         "info",
		LogFormat:        "auto",
	}
}

// Inputs returns how many input sources are set. args are the positional
// arguments, joined as text.
func (f *Flags) Inputs(args []string) int {
	n := 0
	for _, s := range []string{f.URL, f.File, f.Text, f.BatchFile} {
		if s != "" {
			n++
		}
	}
	if len(args) > 0 {
		n++
	}
	return n
}
