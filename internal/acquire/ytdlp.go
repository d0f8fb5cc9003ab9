package acquire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultAttemptTimeout bounds a single download attempt.
const DefaultAttemptTimeout = 5 * time.Minute

// Config carries the settings shared by the download strategies.
type Config struct {
	WorkDir        string
	YTDLPBinary    string
	FFmpegLocation string
	Proxy          string
	CookiesFile    string
	AttemptTimeout time.Duration
}

// CommandRunner executes an external program and returns its combined
// output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

// YTDLP downloads the audio track with the yt-dlp CLI and converts it to
// mp3.
type YTDLP struct {
	name   string
	binary string
	format string
	extra  []string
	// skip, when non-empty, fails the attempt without running yt-dlp.
	skip string
	// needs names a file that must exist when the attempt starts.
	needs string
	run   CommandRunner
}

func newYTDLP(cfg Config, run CommandRunner, name, format string) *YTDLP {
	bin := cfg.YTDLPBinary
	if bin == "" {
		bin = "yt-dlp"
	}
	if run == nil {
		run = execRunner
	}
	y := &YTDLP{name: name, binary: bin, format: format, run: run}
	if cfg.FFmpegLocation != "" {
		y.extra = append(y.extra, "--ffmpeg-location", cfg.FFmpegLocation)
	}
	return y
}

// BestAudio picks the highest quality audio stream.
func BestAudio(cfg Config, run CommandRunner) *YTDLP {
	return newYTDLP(cfg, run, "best-audio", "bestaudio/best")
}

// ViaProxy repeats the best-audio download through cfg.Proxy.
func ViaProxy(cfg Config, run CommandRunner) *YTDLP {
	y := newYTDLP(cfg, run, "proxy", "bestaudio/best")
	if cfg.Proxy == "" {
		y.skip = "no proxy configured"
	}
	y.extra = append(y.extra, "--proxy", cfg.Proxy)
	return y
}

// WorstAudio asks for the smallest audio stream, which some hosts serve when
// the larger formats are throttled.
func WorstAudio(cfg Config, run CommandRunner) *YTDLP {
	return newYTDLP(cfg, run, "worst-audio", "worstaudio/worst")
}

// WithCookies repeats the best-audio download with a Netscape cookies file.
func WithCookies(cfg Config, run CommandRunner) *YTDLP {
	y := newYTDLP(cfg, run, "cookies", "bestaudio/best")
	if cfg.CookiesFile == "" {
		y.skip = "no cookies file configured"
	}
	y.needs = cfg.CookiesFile
	y.extra = append(y.extra, "--cookies", cfg.CookiesFile)
	return y
}

func (y *YTDLP) Name() string { return y.name }

// Args returns the yt-dlp argument list for url writing to base.
func (y *YTDLP) Args(url, base string) []string {
	args := []string{
		"-f", y.format,
		"-x", "--audio-format", "mp3",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"--no-check-certificates",
		"-o", base + ".%(ext)s",
	}
	args = append(args, y.extra...)
	return append(args, url)
}

func (y *YTDLP) Attempt(ctx context.Context, loc Locator, base string) (string, error) {
	if loc.Kind() != RemoteVideo {
		return "", errors.New("not a remote locator")
	}
	if y.skip != "" {
		return "", errors.New(y.skip)
	}
	if y.needs != "" {
		info, err := os.Stat(y.needs)
		if err != nil {
			return "", fmt.Errorf("cookies file unavailable: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("cookies file unavailable: %s is a directory", y.needs)
		}
	}

	out, err := y.run(ctx, y.binary, y.Args(loc.URL(), base)...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return "", fmt.Errorf("%s: %w", y.binary, err)
		}
		return "", fmt.Errorf("%s: %w: %s", y.binary, err, lastLine(msg))
	}
	return base + ".mp3", nil
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DefaultStrategies returns the remote chain in the order it is tried.
func DefaultStrategies(cfg Config, run CommandRunner) []Strategy {
	return []Strategy{
		BestAudio(cfg, run),
		ViaProxy(cfg, run),
		WorstAudio(cfg, run),
		WithCookies(cfg, run),
		NewNative(nil),
	}
}
