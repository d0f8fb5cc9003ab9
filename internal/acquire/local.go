package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalCopy copies a local audio or video file into the work directory so
// that cleanup never touches the caller's original.
type LocalCopy struct{}

func (LocalCopy) Name() string { return "local-copy" }

func (LocalCopy) Attempt(ctx context.Context, loc Locator, base string) (string, error) {
	if loc.Kind() != LocalFile {
		return "", errors.New("not a local locator")
	}

	src := loc.Path()
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("source file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source is a directory: %s", src)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("source file is empty: %s", src)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".audio"
	}
	out := base + ext

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, in); err != nil {
		f.Close()
		return "", fmt.Errorf("copy source file: %w", err)
	}
	return out, f.Close()
}
