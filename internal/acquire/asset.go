package acquire

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// State is the lifecycle position of an Asset.
type State int

const (
	Acquired State = iota
	Consumed
	Deleted
)

func (s State) String() string {
	switch s {
	case Acquired:
		return "acquired"
	case Consumed:
		return "consumed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Asset owns exactly one audio file in the work directory. The pipeline run
// that acquired it must call Delete before it returns.
type Asset struct {
	path string
	hash string

	mu    sync.Mutex
	state State
}

// newAsset validates path and hashes its content.
func newAsset(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("hash audio file: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("audio file is empty: %s", path)
	}

	return &Asset{
		path:  path,
		hash:  hex.EncodeToString(h.Sum(nil)),
		state: Acquired,
	}, nil
}

// Path returns the on-disk location of the audio file.
func (a *Asset) Path() string { return a.path }

// Hash returns the hex sha256 of the audio content.
func (a *Asset) Hash() string { return a.hash }

// State returns the current lifecycle state.
func (a *Asset) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// MarkConsumed records that transcription has read the file.
func (a *Asset) MarkConsumed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Acquired {
		a.state = Consumed
	}
}

// Delete removes the audio file. It is safe to call more than once.
func (a *Asset) Delete() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Deleted {
		return nil
	}
	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete audio asset: %w", err)
	}
	a.state = Deleted
	return nil
}
