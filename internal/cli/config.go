package cli

import (
	"path/filepath"

	"github.com/spf13/viper"

	"codeberg.org/snonux/kikitori/internal/acquire"
	"codeberg.org/snonux/kikitori/internal/audio"
	"codeberg.org/snonux/kikitori/internal/translation"
)

// Settings is the resolved configuration of one invocation.
type Settings struct {
	WorkDir        string
	Language       string
	TargetLanguage string

	Acquire acquire.Config
	FFmpeg  string

	TranscribeEngine string
	TranscribeModel  string
	WhisperCppBin    string
	WhisperCppModel  string
	WhisperThreads   int

	TranslateEngine string
	TranslateModel  string
	Translation     translation.Config

	Audio        audio.Config
	AudioWorkers int

	DeckName   string
	DeckOutput string

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work_dir", defaultWorkDir())
	v.SetDefault("language", "ja")
	v.SetDefault("target_language", "en")

	v.SetDefault("acquire.ytdlp", "yt-dlp")
	v.SetDefault("acquire.timeout", acquire.DefaultAttemptTimeout)

	v.SetDefault("transcribe.engine", "openai")
	v.SetDefault("transcribe.whispercpp_bin", "whisper-cli")

	def := translation.DefaultConfig()
	v.SetDefault("translate.engine", "openai")
	v.SetDefault("translate.attempts", def.Attempts)
	v.SetDefault("translate.delay", def.Delay)
	v.SetDefault("translate.timeout", def.Timeout)
	v.SetDefault("translate.workers", def.Workers)
	v.SetDefault("translate.breaker_threshold", def.BreakerThreshold)
	v.SetDefault("translate.breaker_timeout", def.BreakerTimeout)

	adef := audio.DefaultProviderConfig()
	v.SetDefault("audio.provider", adef.Provider)
	v.SetDefault("audio.model", adef.OpenAIModel)
	v.SetDefault("audio.voice", adef.OpenAIVoice)
	v.SetDefault("audio.speed", adef.OpenAISpeed)
	v.SetDefault("audio.instruction", adef.OpenAIInstruction)
	v.SetDefault("audio.espeak_voice", adef.ESpeakVoice)
	v.SetDefault("audio.workers", 4)

	v.SetDefault("deck.name", "Japanese Vocabulary")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
}

// LoadSettings resolves the settings from v. Durations accept Go duration
// strings ("90s") in the config file.
func LoadSettings(v *viper.Viper) Settings {
	setDefaults(v)

	workDir := v.GetString("work_dir")
	ffmpeg := v.GetString("acquire.ffmpeg")

	s := Settings{
		WorkDir:        workDir,
		Language:       v.GetString("language"),
		TargetLanguage: v.GetString("target_language"),
		Acquire: acquire.Config{
			WorkDir:        workDir,
			YTDLPBinary:    v.GetString("acquire.ytdlp"),
			FFmpegLocation: ffmpeg,
			Proxy:          v.GetString("acquire.proxy"),
			CookiesFile:    v.GetString("acquire.cookies"),
			AttemptTimeout: v.GetDuration("acquire.timeout"),
		},
		FFmpeg: ffmpeg,

		TranscribeEngine: v.GetString("transcribe.engine"),
		TranscribeModel:  v.GetString("transcribe.model"),
		WhisperCppBin:    v.GetString("transcribe.whispercpp_bin"),
		WhisperCppModel:  v.GetString("transcribe.whispercpp_model"),
		WhisperThreads:   v.GetInt("transcribe.threads"),

		TranslateEngine: v.GetString("translate.engine"),
		TranslateModel:  v.GetString("translate.model"),
		Translation: translation.Config{
			Source:           v.GetString("language"),
			Target:           v.GetString("target_language"),
			Attempts:         v.GetInt("translate.attempts"),
			Delay:            v.GetDuration("translate.delay"),
			Timeout:          v.GetDuration("translate.timeout"),
			Workers:          v.GetInt("translate.workers"),
			BreakerThreshold: v.GetUint32("translate.breaker_threshold"),
			BreakerTimeout:   v.GetDuration("translate.breaker_timeout"),
		},

		Audio: audio.Config{
			Provider:          v.GetString("audio.provider"),
			OpenAIModel:       v.GetString("audio.model"),
			OpenAIVoice:       v.GetString("audio.voice"),
			OpenAISpeed:       v.GetFloat64("audio.speed"),
			OpenAIInstruction: v.GetString("audio.instruction"),
			CacheDir:          v.GetString("audio.cache_dir"),
			ESpeakVoice:       v.GetString("audio.espeak_voice"),
			ESpeakSpeed:       v.GetInt("audio.espeak_speed"),
			FFmpegBinary:      ffmpeg,
		},
		AudioWorkers: v.GetInt("audio.workers"),

		DeckName:   v.GetString("deck.name"),
		DeckOutput: v.GetString("deck.output"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if s.DeckOutput == "" {
		s.DeckOutput = filepath.Join(workDir, "japanese_vocabulary.apkg")
	}
	if s.Translation.Attempts <= 0 {
		s.Translation.Attempts = 1
	}
	if s.Translation.Delay < 0 {
		s.Translation.Delay = 0
	}
	return s
}
