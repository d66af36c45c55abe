// Package extract runs the configured metadata backends over a file and
// merges their output into one raw metadata table.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fa-metadata/fa40/internal/backends"
	"github.com/fa-metadata/fa40/internal/header"
	"github.com/fa-metadata/fa40/internal/metadata"
)

// Merge policies for tags reported by more than one backend.
const (
	MergeFirstWins = "first"
	MergeLastWins  = "last"
)

// BackendFailure records one backend's failure for one file. Failures are
// data, not errors: extraction continues with the remaining backends.
type BackendFailure struct {
	Backend string `json:"backend"`
	Reason  string `json:"reason"`
}

// Extractor holds the ordered backend list and the merge policy.
type Extractor struct {
	backends []backends.Backend
	policy   string
}

// New builds an extractor. An unknown policy falls back to first-wins, the
// default: the backend registered earlier is considered more authoritative.
func New(bs []backends.Backend, policy string) *Extractor {
	if policy != MergeLastWins {
		policy = MergeFirstWins
	}
	return &Extractor{backends: bs, policy: policy}
}

// Default returns the extractor with all built-in backends in their
// canonical order.
func Default() *Extractor {
	return New([]backends.Backend{
		backends.Imaging{},
		backends.TIFFDir{},
		backends.ExifScan{},
	}, MergeFirstWins)
}

// ByName resolves backend names to instances, preserving order. Unknown
// names are an error so a typo in configuration surfaces immediately.
func ByName(names []string) ([]backends.Backend, error) {
	all := map[string]backends.Backend{
		"imaging":  backends.Imaging{},
		"tiffdir":  backends.TIFFDir{},
		"exifscan": backends.ExifScan{},
	}
	out := make([]backends.Backend, 0, len(names))
	for _, n := range names {
		b, ok := all[n]
		if !ok {
			return nil, fmt.Errorf("unknown backend %q", n)
		}
		out = append(out, b)
	}
	return out, nil
}

// Extract reads one file's metadata. Backend failures are recorded and
// recovered; only the file itself being unreadable is an error. All backends
// failing yields an empty table plus the reasons, which callers must treat
// as a valid outcome.
func (e *Extractor) Extract(path string) (*metadata.Raw, []BackendFailure, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat input: %w", err)
	}

	raw := metadata.NewRaw()
	e.putFileInfo(raw, path, info)

	var failures []BackendFailure
	for _, b := range e.backends {
		tags, err := b.Extract(path)
		if err != nil {
			if errors.Is(err, backends.ErrUnavailable) {
				slog.Debug("backend unavailable", "backend", b.Name(), "file", path, "err", err)
			} else {
				slog.Warn("backend failed", "backend", b.Name(), "file", path, "err", err)
			}
			failures = append(failures, BackendFailure{Backend: b.Name(), Reason: err.Error()})
			if tags == nil {
				continue
			}
		}
		e.merge(raw, b.Name(), tags)
	}

	e.publishCustomTags(raw)
	return raw, failures, nil
}

func (e *Extractor) putFileInfo(raw *metadata.Raw, path string, info os.FileInfo) {
	set := func(tag string, v metadata.Value) {
		raw.Replace(metadata.TagRef{Source: metadata.SourceFile, Tag: tag}, v)
	}
	set(metadata.TagFileName, metadata.String(filepath.Base(path)))
	set(metadata.TagFilePath, metadata.String(path))
	set(metadata.TagFileSize, metadata.Int(info.Size()))
	set(metadata.TagFileModified, metadata.String(info.ModTime().Format(header.TimeLayout)))
	set(metadata.TagFileFormat, metadata.String(formatForExt(path)))
}

func formatForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff", ".tif32":
		return "TIFF"
	}
	return strings.TrimPrefix(strings.ToUpper(filepath.Ext(path)), ".")
}

// merge folds one backend's tags into the table. Tag names are sorted first
// so the table's insertion order, and with it every downstream listing, is
// deterministic.
func (e *Extractor) merge(raw *metadata.Raw, source string, tags map[string]metadata.Value) {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := metadata.TagRef{Source: source, Tag: name}
		if e.policy == MergeLastWins {
			raw.Replace(ref, tags[name])
		} else {
			raw.Put(ref, tags[name])
		}
	}
}

// publishCustomTags republishes proprietary tags (IDs 32000-32999) under the
// reserved custom source so connectors can address them without naming the
// backend that found them.
func (e *Extractor) publishCustomTags(raw *metadata.Raw) {
	for _, ref := range raw.Refs() {
		if ref.Source == metadata.SourceCustom {
			continue
		}
		id, err := strconv.Atoi(ref.Tag)
		if err != nil || !metadata.IsCustomTagID(id) {
			continue
		}
		v, _ := raw.Lookup(ref)
		custom := metadata.TagRef{Source: metadata.SourceCustom, Tag: ref.Tag}
		if e.policy == MergeLastWins {
			raw.Replace(custom, v)
		} else {
			raw.Put(custom, v)
		}
	}
}
