package translation

import "sync"

// TranslationCache stores successful translations in memory for the
// lifetime of a client.
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

func cacheKey(word, src, dst string) string {
	return src + "\x00" + dst + "\x00" + word
}

// Add records a translation of word from src to dst.
func (tc *TranslationCache) Add(word, src, dst, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[cacheKey(word, src, dst)] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(word, src, dst string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[cacheKey(word, src, dst)]
	return translation, ok
}

// Len returns the number of cached translations.
func (tc *TranslationCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.translations)
}
