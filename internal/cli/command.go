package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/kikitori/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kikitori [text]",
		Short: "Japanese listening vocabulary to Anki decks",
		Long: `kikitori turns spoken or written Japanese into an Anki deck.

It downloads the audio of a video (or reads a local file), transcribes it,
extracts the vocabulary, translates every word and packages the words with
readings, translations, context sentences and pronunciation audio.

Examples:
  kikitori --url https://www.youtube.com/watch?v=...   # from a video
  kikitori --file lesson.mp3                           # from a local recording
  kikitori 猫が好きです                                 # from text
  kikitori --batch words.txt                           # from a word list
  kikitori --check-deps                                # verify external tools`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.kikitori.yaml)")

	// Input flags
	cmd.Flags().StringVar(&flags.URL, "url", "", "Video URL to download the audio from")
	cmd.Flags().StringVar(&flags.File, "file", "", "Local audio or video file")
	cmd.Flags().StringVar(&flags.Text, "text", "", "Japanese text to extract vocabulary from")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Word list file (one word per line, optional 'word = translation')")

	// Output flags
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Deck output path (default <work-dir>/japanese_vocabulary.apkg)")
	cmd.Flags().StringVar(&flags.WorkDir, "work-dir", "", "Shared directory for temporary files (default $TMPDIR/kikitori)")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name")
	cmd.Flags().IntVar(&flags.Preview, "preview", flags.Preview, "Print the first N words as a table (0 disables)")
	cmd.Flags().BoolVar(&flags.AnkiCSV, "anki-csv", false, "Also write a legacy CSV export next to the deck")
	cmd.Flags().BoolVar(&flags.KeepPrevious, "keep-previous", false, "Archive the previous deck instead of overwriting it")

	// Maintenance
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")
	cmd.Flags().BoolVar(&flags.CheckDeps, "check-deps", false, "Check that the external tools are installed")

	// Stage selection
	cmd.Flags().StringVar(&flags.Language, "language", flags.Language, "Spoken language of the input")
	cmd.Flags().StringVar(&flags.TargetLanguage, "target-language", flags.TargetLanguage, "Language to translate into")
	cmd.Flags().StringVar(&flags.TranscribeEngine, "transcribe-engine", flags.TranscribeEngine, "Speech-to-text engine: openai or whispercpp")
	cmd.Flags().StringVar(&flags.TranslateEngine, "translate-engine", flags.TranslateEngine, "Translation engine: openai or gemini")
	cmd.Flags().StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Pronunciation audio: openai, espeak or auto")
	cmd.Flags().StringVar(&flags.Proxy, "proxy", "", "Proxy for the proxy download strategy")
	cmd.Flags().StringVar(&flags.Cookies, "cookies", "", "Cookies file for the cookies download strategy")

	// Logging
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text, json or auto")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("work_dir", cmd.Flags().Lookup("work-dir"))
	viper.BindPFlag("language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("target_language", cmd.Flags().Lookup("target-language"))
	viper.BindPFlag("acquire.proxy", cmd.Flags().Lookup("proxy"))
	viper.BindPFlag("acquire.cookies", cmd.Flags().Lookup("cookies"))
	viper.BindPFlag("transcribe.engine", cmd.Flags().Lookup("transcribe-engine"))
	viper.BindPFlag("translate.engine", cmd.Flags().Lookup("translate-engine"))
	viper.BindPFlag("audio.provider", cmd.Flags().Lookup("audio-provider"))
	viper.BindPFlag("deck.name", cmd.Flags().Lookup("deck-name"))
	viper.BindPFlag("deck.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	setDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".kikitori" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kikitori")
	}

	// Environment variables
	viper.SetEnvPrefix("KIKITORI")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini.key")
}

func defaultWorkDir() string {
	return filepath.Join(os.TempDir(), "kikitori")
}
