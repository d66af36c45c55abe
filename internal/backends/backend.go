// Package backends holds the optional metadata-reading backends. Each
// backend wraps one third-party decoding library and reports its findings
// under its own source label; the extractor merges them.
package backends

import (
	"errors"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// ErrUnavailable marks a backend that cannot serve a particular file
// (unsupported or corrupt format, no EXIF segment). The extractor records it
// and moves on; it is never fatal.
var ErrUnavailable = errors.New("backend unavailable for file")

// Backend reads one file's metadata. Extract returns tag name to value for
// this backend's source label. Failures are returned, not panicked; wrap
// ErrUnavailable for can't-read-this-file conditions.
type Backend interface {
	Name() string
	Extract(path string) (map[string]metadata.Value, error)
}
