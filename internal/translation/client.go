package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// Engine is a translation backend. It may fail at any time.
type Engine interface {
	Translate(ctx context.Context, text, src, dst string) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, text, src, dst string) (string, error)

func (f EngineFunc) Translate(ctx context.Context, text, src, dst string) (string, error) {
	return f(ctx, text, src, dst)
}

// Config controls the retry policy of a Client.
type Config struct {
	Source   string
	Target   string
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration // per attempt
	Workers  int

	// The breaker opens after BreakerThreshold consecutive failures and
	// stays open for BreakerTimeout.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultConfig returns the default policy: 3 attempts 2s apart, 30s per
// attempt, 4 workers.
func DefaultConfig() Config {
	return Config{
		Source:           "ja",
		Target:           "en",
		Attempts:         3,
		Delay:            2 * time.Second,
		Timeout:          30 * time.Second,
		Workers:          4,
		BreakerThreshold: 10,
		BreakerTimeout:   30 * time.Second,
	}
}

// Client wraps an Engine with retry, a circuit breaker and a cache.
type Client struct {
	engine  Engine
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	cache   *TranslationCache
	logger  *slog.Logger
}

// NewClient creates a client. Zero values in cfg fall back to
// DefaultConfig.
func NewClient(engine Engine, cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.Source == "" {
		cfg.Source = def.Source
	}
	if cfg.Target == "" {
		cfg.Target = def.Target
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = def.BreakerThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "translation")

	threshold := cfg.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translation",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		engine:  engine,
		cfg:     cfg,
		breaker: breaker,
		cache:   NewTranslationCache(),
		logger:  logger,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Seed stores a known translation so the engine is never asked for word.
func (c *Client) Seed(word, translation string) {
	word = strings.TrimSpace(word)
	translation = strings.TrimSpace(translation)
	if word == "" || translation == "" {
		return
	}
	c.cache.Add(word, c.cfg.Source, c.cfg.Target, translation)
}

// Translate translates word between the configured languages.
func (c *Client) Translate(ctx context.Context, word string) string {
	return c.TranslatePair(ctx, word, c.cfg.Source, c.cfg.Target)
}

// TranslatePair translates word from src to dst. It never returns an error:
// after the configured number of failed attempts it returns "".
// Whitespace-only input returns "" without contacting the engine.
func (c *Client) TranslatePair(ctx context.Context, word, src, dst string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	if t, ok := c.cache.Get(word, src, dst); ok {
		return t
	}

	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		t, err := c.attempt(ctx, word, src, dst)
		if err == nil {
			c.cache.Add(word, src, dst, t)
			return t
		}
		c.logger.Warn("translation attempt failed",
			"word", word, "attempt", attempt, "of", c.cfg.Attempts, "error", err)

		if attempt == c.cfg.Attempts {
			break
		}
		select {
		case <-time.After(c.cfg.Delay):
		case <-ctx.Done():
			c.logger.Warn("translation abandoned", "word", word, "error", ctx.Err())
			return ""
		}
	}
	return ""
}

func (c *Client) attempt(ctx context.Context, word, src, dst string) (string, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		t, err := c.engine.Translate(actx, word, src, dst)
		if err != nil {
			return nil, err
		}
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("engine returned an empty translation")
		}
		return t, nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// TranslateAll translates words concurrently, bounded by the configured
// worker count. The result has the same length and order as words.
func (c *Client) TranslateAll(ctx context.Context, words []string) []string {
	results := make([]string, len(words))
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i, w := range words {
		g.Go(func() error {
			results[i] = c.Translate(ctx, w)
			return nil
		})
	}
	_ = g.Wait()

	missing := 0
	for _, r := range results {
		if r == "" {
			missing++
		}
	}
	c.logger.Info("translations finished",
		"words", len(words), "missing", missing, "cached", c.cache.Len())
	return results
}
