package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// Native downloads the best audio-only stream in-process, without any
// external binary. The file keeps its container format (m4a or webm).
type Native struct {
	client *youtube.Client
}

// NewNative returns a native strategy. A nil client uses a default one.
func NewNative(client *youtube.Client) *Native {
	if client == nil {
		client = &youtube.Client{}
	}
	return &Native{client: client}
}

func (n *Native) Name() string { return "native" }

func (n *Native) Attempt(ctx context.Context, loc Locator, base string) (string, error) {
	if loc.Kind() != RemoteVideo {
		return "", errors.New("not a remote locator")
	}

	video, err := n.client.GetVideoContext(ctx, loc.URL())
	if err != nil {
		return "", fmt.Errorf("fetch video metadata: %w", err)
	}

	format, ok := bestAudioFormat(video.Formats)
	if !ok {
		return "", errors.New("no audio-only format available")
	}

	stream, _, err := n.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("open audio stream: %w", err)
	}
	defer stream.Close()

	out := base + extensionForMime(format.MimeType)
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return "", fmt.Errorf("download audio stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return out, nil
}

func bestAudioFormat(formats youtube.FormatList) (*youtube.Format, bool) {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best, best != nil
}

func extensionForMime(mime string) string {
	switch {
	case strings.HasPrefix(mime, "audio/mp4"):
		return ".m4a"
	case strings.HasPrefix(mime, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(mime, "audio/mpeg"):
		return ".mp3"
	default:
		return ".audio"
	}
}
