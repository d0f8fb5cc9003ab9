package acquire

import "fmt"

// Kind tags the variant of a Locator.
type Kind int

const (
	RemoteVideo Kind = iota
	LocalFile
)

func (k Kind) String() string {
	switch k {
	case RemoteVideo:
		return "remote-video"
	case LocalFile:
		return "local-file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Locator identifies where the audio comes from. It is immutable once
// created.
type Locator struct {
	kind  Kind
	value string
}

// Remote returns a locator for a video URL.
func Remote(url string) Locator {
	return Locator{kind: RemoteVideo, value: url}
}

// Local returns a locator for a file on disk.
func Local(path string) Locator {
	return Locator{kind: LocalFile, value: path}
}

func (l Locator) Kind() Kind { return l.kind }

// URL returns the video URL of a RemoteVideo locator.
func (l Locator) URL() string {
	if l.kind != RemoteVideo {
		return ""
	}
	return l.value
}

// Path returns the file path of a LocalFile locator.
func (l Locator) Path() string {
	if l.kind != LocalFile {
		return ""
	}
	return l.value
}

func (l Locator) String() string {
	return fmt.Sprintf("%s{%s}", l.kind, l.value)
}
