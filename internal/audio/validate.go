package audio

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateJapaneseText checks that text has at least one kana or kanji.
func ValidateJapaneseText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return nil
		}
	}
	return fmt.Errorf("text must contain Japanese characters")
}

// CleanText removes punctuation that a TTS engine would otherwise read out
// or pause on.
func CleanText(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(cleaned)
}
