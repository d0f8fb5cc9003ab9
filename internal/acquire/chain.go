package acquire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// Strategy is one way of fetching audio for a locator. Attempt must write
// its output under base (base plus an extension) and return the path of the
// audio file it produced.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, loc Locator, base string) (string, error)
}

// Chain tries its strategies in order until one yields a usable file.
type Chain struct {
	workDir string
	remote  []Strategy
	local   Strategy
	timeout time.Duration
	logger  *slog.Logger
}

// Option customises a Chain.
type Option func(*Chain)

// WithAttemptTimeout bounds every single strategy attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Chain) { c.timeout = d }
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocalStrategy replaces the strategy used for LocalFile locators.
func WithLocalStrategy(s Strategy) Option {
	return func(c *Chain) { c.local = s }
}

// NewChain builds a chain over remote. LocalFile locators use a plain copy
// into the work directory unless overridden.
func NewChain(workDir string, remote []Strategy, opts ...Option) *Chain {
	c := &Chain{
		workDir: workDir,
		remote:  remote,
		local:   LocalCopy{},
		timeout: DefaultAttemptTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds the default remote chain from cfg.
func New(cfg Config, opts ...Option) *Chain {
	c := NewChain(cfg.WorkDir, DefaultStrategies(cfg, nil), opts...)
	if cfg.AttemptTimeout > 0 {
		c.timeout = cfg.AttemptTimeout
	}
	return c
}

// Strategies returns the strategy names in the order they are tried for loc.
func (c *Chain) Strategies(loc Locator) []string {
	var names []string
	for _, s := range c.strategiesFor(loc) {
		names = append(names, s.Name())
	}
	return names
}

func (c *Chain) strategiesFor(loc Locator) []Strategy {
	if loc.Kind() == LocalFile {
		return []Strategy{c.local}
	}
	return c.remote
}

// Acquire runs the chain for loc. runID scopes every file name so that
// concurrent runs in the same work directory never collide. On success the
// returned asset is the only file left behind; on failure nothing is left
// and the error lists every attempt's cause in order.
func (c *Chain) Acquire(ctx context.Context, runID string, loc Locator) (*Asset, error) {
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return nil, kerrors.NewAcquisition(&kerrors.StrategyFailure{
			Index: 1, Strategy: "setup", Err: fmt.Errorf("create work dir: %w", err),
		})
	}

	strategies := c.strategiesFor(loc)
	failures := make([]*kerrors.StrategyFailure, 0, len(strategies))

	for i, s := range strategies {
		base := filepath.Join(c.workDir, fmt.Sprintf("%s_s%d", runID, i+1))
		c.logger.Debug("acquire attempt", "strategy", s.Name(), "index", i+1, "locator", loc.String())

		asset, err := c.attempt(ctx, s, loc, base)
		if err == nil {
			c.removeScoped(base, asset.Path())
			c.logger.Info("audio acquired", "strategy", s.Name(), "path", asset.Path())
			return asset, nil
		}

		c.removeScoped(base, "")
		c.logger.Warn("acquire strategy failed", "strategy", s.Name(), "index", i+1, "error", err)
		failures = append(failures, &kerrors.StrategyFailure{Index: i + 1, Strategy: s.Name(), Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return nil, kerrors.NewAcquisition(failures...)
}

func (c *Chain) attempt(ctx context.Context, s Strategy, loc Locator, base string) (*Asset, error) {
	actx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := s.Attempt(actx, loc, base)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, errors.New("strategy reported no output file")
	}
	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("output file missing: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("output file is empty: %s", out)
	}
	return newAsset(out)
}

// removeScoped deletes every file belonging to one attempt except keep.
func (c *Chain) removeScoped(base, keep string) {
	matches, _ := filepath.Glob(base + ".*")
	matches = append(matches, base)
	for _, m := range matches {
		if m == keep {
			continue
		}
		if err := os.RemoveAll(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to remove attempt file", "path", m, "error", err)
		}
	}
}
