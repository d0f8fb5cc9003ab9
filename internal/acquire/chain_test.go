package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "codeberg.org/snonux/kikitori/internal/errors"
)

// scriptedStrategy leaves a partial file behind and then either fails or
// writes the final audio file.
type scriptedStrategy struct {
	name    string
	err     error
	content string
	calls   int
}

func (s *scriptedStrategy) Name() string { return s.name }

func (s *scriptedStrategy) Attempt(ctx context.Context, loc Locator, base string) (string, error) {
	s.calls++
	if err := os.WriteFile(base+".part", []byte("partial"), 0o644); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	out := base + ".mp3"
	return out, os.WriteFile(out, []byte(s.content), 0o644)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestChain_ThirdStrategySucceeds(t *testing.T) {
	dir := t.TempDir()
	s1 := &scriptedStrategy{name: "one", err: errors.New("HTTP 403")}
	s2 := &scriptedStrategy{name: "two", err: errors.New("timeout")}
	s3 := &scriptedStrategy{name: "three", content: "audio-bytes"}
	s4 := &scriptedStrategy{name: "four", content: "never"}

	chain := NewChain(dir, []Strategy{s1, s2, s3, s4})
	asset, err := chain.Acquire(context.Background(), "run1", Remote("https://example.com/v"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "run1_s3.mp3"), asset.Path())
	assert.Equal(t, Acquired, asset.State())
	assert.Len(t, asset.Hash(), 64)
	assert.Equal(t, []string{"run1_s3.mp3"}, listDir(t, dir))
	assert.Equal(t, 0, s4.calls)
}

func TestChain_AllStrategiesFail(t *testing.T) {
	dir := t.TempDir()
	chain := NewChain(dir, []Strategy{
		&scriptedStrategy{name: "one", err: errors.New("HTTP 403")},
		&scriptedStrategy{name: "two", err: errors.New("no proxy configured")},
		&scriptedStrategy{name: "three", content: ""},
	})

	asset, err := chain.Acquire(context.Background(), "run2", Remote("https://example.com/v"))
	require.Error(t, err)
	assert.Nil(t, asset)
	assert.True(t, kerrors.Is(err, kerrors.ErrAcquisition))

	failures := kerrors.Failures(err)
	require.Len(t, failures, 3)
	assert.Equal(t, "one", failures[0].Strategy)
	assert.Equal(t, "two", failures[1].Strategy)
	assert.Equal(t, "three", failures[2].Strategy)
	assert.Contains(t, failures[2].Err.Error(), "empty")
	assert.Empty(t, listDir(t, dir))
}

func TestChain_StopsWhenContextCancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	first := &scriptedStrategy{name: "one", err: errors.New("boom")}
	second := &scriptedStrategy{name: "two", content: "x"}
	cancel()

	_, err := NewChain(dir, []Strategy{first, second}).Acquire(ctx, "run3", Remote("u"))
	require.Error(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChain_LocalFileIsCopied(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Lecture.MP4")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o644))
	dir := t.TempDir()

	chain := NewChain(dir, nil)
	assert.Equal(t, []string{"local-copy"}, chain.Strategies(Local(src)))

	asset, err := chain.Acquire(context.Background(), "run4", Local(src))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run4_s1.mp4"), asset.Path())

	require.NoError(t, asset.Delete())
	require.NoError(t, asset.Delete())
	assert.Equal(t, Deleted, asset.State())

	_, err = os.Stat(src)
	assert.NoError(t, err, "original file must survive cleanup")
}

func TestChain_LocalFileMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewChain(dir, nil).Acquire(context.Background(), "run5", Local(filepath.Join(dir, "nope.wav")))
	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.ErrAcquisition))
	assert.Contains(t, err.Error(), "local-copy")
}

func TestAsset_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	asset, err := newAsset(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", asset.Hash())

	asset.MarkConsumed()
	assert.Equal(t, Consumed, asset.State())
	require.NoError(t, asset.Delete())
	asset.MarkConsumed()
	assert.Equal(t, Deleted, asset.State())
}

func TestYTDLP_Args(t *testing.T) {
	cfg := Config{Proxy: "socks5://127.0.0.1:9050", CookiesFile: "/tmp/c.txt"}
	proxy := ViaProxy(cfg, nil)
	args := strings.Join(proxy.Args("https://youtu.be/x", "/w/r_s2"), " ")
	assert.Contains(t, args, "-f bestaudio/best")
	assert.Contains(t, args, "--audio-format mp3")
	assert.Contains(t, args, "-o /w/r_s2.%(ext)s")
	assert.Contains(t, args, "--proxy socks5://127.0.0.1:9050")
	assert.True(t, strings.HasSuffix(args, "https://youtu.be/x"))

	worst := strings.Join(WorstAudio(cfg, nil).Args("u", "b"), " ")
	assert.Contains(t, worst, "-f worstaudio/worst")
}

func TestYTDLP_Attempt(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	}

	y := BestAudio(Config{YTDLPBinary: "/opt/yt-dlp"}, runner)
	out, err := y.Attempt(context.Background(), Remote("https://youtu.be/x"), "/w/r_s1")
	require.NoError(t, err)
	assert.Equal(t, "/w/r_s1.mp3", out)
	assert.Equal(t, "/opt/yt-dlp", gotName)
	assert.Equal(t, "https://youtu.be/x", gotArgs[len(gotArgs)-1])
}

func TestYTDLP_AttemptFailureCarriesOutput(t *testing.T) {
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("[youtube] x: Downloading\nERROR: HTTP Error 403: Forbidden\n"), errors.New("exit status 1")
	}
	_, err := BestAudio(Config{}, runner).Attempt(context.Background(), Remote("u"), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP Error 403")
}

func TestYTDLP_UnconfiguredStrategiesSkip(t *testing.T) {
	called := false
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}

	_, err := ViaProxy(Config{}, runner).Attempt(context.Background(), Remote("u"), "b")
	assert.EqualError(t, err, "no proxy configured")
	_, err = WithCookies(Config{}, runner).Attempt(context.Background(), Remote("u"), "b")
	assert.EqualError(t, err, "no cookies file configured")
	assert.False(t, called)
}

func TestYTDLP_CookiesFileMustExist(t *testing.T) {
	called := false
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}

	missing := filepath.Join(t.TempDir(), "cookies.txt")
	cookies := WithCookies(Config{CookiesFile: missing}, runner)
	_, err := cookies.Attempt(context.Background(), Remote("u"), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cookies file unavailable")
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, called)

	require.NoError(t, os.WriteFile(missing, []byte("# Netscape HTTP Cookie File\n"), 0o600))
	out, err := cookies.Attempt(context.Background(), Remote("u"), "b")
	require.NoError(t, err)
	assert.Equal(t, "b.mp3", out)
	assert.True(t, called)
}

func TestDefaultStrategiesOrder(t *testing.T) {
	chain := NewChain(t.TempDir(), DefaultStrategies(Config{}, nil))
	assert.Equal(t,
		[]string{"best-audio", "proxy", "worst-audio", "cookies", "native"},
		chain.Strategies(Remote("u")))
}

func TestExtensionForMime(t *testing.T) {
	assert.Equal(t, ".m4a", extensionForMime(`audio/mp4; codecs="mp4a.40.2"`))
	assert.Equal(t, ".webm", extensionForMime(`audio/webm; codecs="opus"`))
	assert.Equal(t, ".audio", extensionForMime("video/mp4"))
}
