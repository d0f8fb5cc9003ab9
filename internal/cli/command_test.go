package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	t.Cleanup(viper.Reset)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "kikitori [text]" {
		t.Errorf("Expected Use to be 'kikitori [text]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Anki") {
		t.Errorf("Expected Short description to mention Anki, got %q", cmd.Short)
	}

	persistent := map[string]bool{"config": true, "log-level": true, "log-format": true}
	names := []string{
		"config", "log-level", "log-format",
		"url", "file", "text", "batch",
		"output", "work-dir", "deck-name", "preview", "anki-csv", "keep-previous",
		"list-models", "check-deps",
		"language", "target-language", "transcribe-engine", "translate-engine",
		"audio-provider", "proxy", "cookies",
	}

	for _, name := range names {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if persistent[name] {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	previewFlag := cmd.Flags().Lookup("preview")
	if previewFlag == nil {
		t.Fatal("preview flag not found")
	}
	if previewFlag.DefValue != "10" {
		t.Errorf("Expected default preview to be 10, got %s", previewFlag.DefValue)
	}

	engineFlag := cmd.Flags().Lookup("transcribe-engine")
	if engineFlag == nil {
		t.Fatal("transcribe-engine flag not found")
	}
	if engineFlag.DefValue != "openai" {
		t.Errorf("Expected default transcribe engine to be openai, got %s", engineFlag.DefValue)
	}
}

func TestInitConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `target_language: de
translate:
  engine: gemini
  attempts: 5
acquire:
  proxy: socks5://127.0.0.1:1080`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if got := viper.GetString("target_language"); got != "de" {
					t.Errorf("target_language = %q, want de", got)
				}
				if got := viper.GetInt("translate.attempts"); got != 5 {
					t.Errorf("translate.attempts = %d, want 5", got)
				}
				if got := viper.GetString("acquire.proxy"); got != "socks5://127.0.0.1:1080" {
					t.Errorf("acquire.proxy = %q", got)
				}
			},
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
			check: func(t *testing.T) {
				if got := viper.GetString("language"); got != "ja" {
					t.Errorf("language default = %q, want ja", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			InitConfig(tt.setupFunc(t))
			tt.check(t)

			// Test environment variable prefix
			t.Setenv("KIKITORI_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

func TestGetOpenAIKey(t *testing.T) {
	t.Cleanup(viper.Reset)

	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{"from environment", "env-test-key", "config-test-key", "env-test-key"},
		{"from config when no env", "", "config-test-key", "config-test-key"},
		{"empty when neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("OPENAI_API_KEY", tt.envKey)
			if tt.configKey != "" {
				viper.Set("openai.key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	t.Setenv("GEMINI_API_KEY", "")
	viper.Set("gemini.key", "from-config")
	if got := GetGeminiKey(); got != "from-config" {
		t.Errorf("GetGeminiKey() = %q, want from-config", got)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	if got := GetGeminiKey(); got != "from-env" {
		t.Errorf("GetGeminiKey() = %q, want from-env", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("output", "/test/deck.apkg")
	cmd.Flags().Set("translate-engine", "gemini")
	cmd.Flags().Set("proxy", "http://proxy:3128")
	cmd.PersistentFlags().Set("log-level", "debug")

	tests := map[string]string{
		"deck.output":      "/test/deck.apkg",
		"translate.engine": "gemini",
		"acquire.proxy":    "http://proxy:3128",
		"log.level":        "debug",
	}
	for key, want := range tests {
		if got := viper.GetString(key); got != want {
			t.Errorf("Expected %s to be %s, got %s", key, want, got)
		}
	}
}
