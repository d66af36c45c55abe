// Package report reads and writes extraction reports: the on-disk form of
// one or more files' raw metadata, decoupling extraction from the
// inspection and mapping-advisor tools.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fa-metadata/fa40/internal/extract"
	"github.com/fa-metadata/fa40/internal/header"
	"github.com/fa-metadata/fa40/internal/metadata"
)

// Summary describes one extraction run.
type Summary struct {
	Timestamp           string `json:"timestamp"`
	TotalFilesProcessed int    `json:"total_files_processed"`
}

// TagSummary aggregates every tag seen across the run.
type TagSummary struct {
	TotalUniqueTags int                 `json:"total_unique_tags"`
	TagsBySource    map[string][]string `json:"tags_by_source"`
	AllTags         []string            `json:"all_tags"`
}

// FileMetadata is one file's raw metadata in report form: the file-level
// pseudo-tags, then tag values grouped by backend source.
type FileMetadata struct {
	File     map[string]metadata.Value            `json:"file"`
	Sources  map[string]map[string]metadata.Value `json:"sources"`
	Failures []extract.BackendFailure             `json:"failures,omitempty"`
}

// Report is the full extraction report document.
type Report struct {
	ExtractionSummary Summary                 `json:"extraction_summary"`
	TagSummary        TagSummary              `json:"tag_summary"`
	FullMetadata      map[string]FileMetadata `json:"full_metadata,omitempty"`
}

// Builder accumulates per-file extraction results into a report.
type Builder struct {
	files map[string]FileMetadata
	order []string
	// Now is injectable for reproducible summaries under test.
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{files: make(map[string]FileMetadata), Now: time.Now}
}

// Add records one file's extraction output.
func (b *Builder) Add(path string, raw *metadata.Raw, failures []extract.BackendFailure) {
	fm := FileMetadata{
		File:     make(map[string]metadata.Value),
		Sources:  make(map[string]map[string]metadata.Value),
		Failures: failures,
	}
	for _, ref := range raw.Refs() {
		v, _ := raw.Lookup(ref)
		if ref.Source == metadata.SourceFile {
			fm.File[ref.Tag] = v
			continue
		}
		if fm.Sources[ref.Source] == nil {
			fm.Sources[ref.Source] = make(map[string]metadata.Value)
		}
		fm.Sources[ref.Source][ref.Tag] = v
	}
	if _, seen := b.files[path]; !seen {
		b.order = append(b.order, path)
	}
	b.files[path] = fm
}

// Build assembles the report. With includeFull false only the summaries are
// emitted, the --no-full-data mode.
func (b *Builder) Build(includeFull bool) Report {
	bySource := make(map[string]map[string]bool)
	for _, fm := range b.files {
		for source, tags := range fm.Sources {
			if bySource[source] == nil {
				bySource[source] = make(map[string]bool)
			}
			for tag := range tags {
				bySource[source][tag] = true
			}
		}
	}

	tagsBySource := make(map[string][]string, len(bySource))
	var allTags []string
	total := 0
	for source, tags := range bySource {
		names := make([]string, 0, len(tags))
		for tag := range tags {
			names = append(names, tag)
			allTags = append(allTags, source+"."+tag)
		}
		sort.Strings(names)
		tagsBySource[source] = names
		total += len(names)
	}
	sort.Strings(allTags)

	r := Report{
		ExtractionSummary: Summary{
			Timestamp:           b.Now().Format(header.TimeLayout),
			TotalFilesProcessed: len(b.files),
		},
		TagSummary: TagSummary{
			TotalUniqueTags: total,
			TagsBySource:    tagsBySource,
			AllTags:         allTags,
		},
	}
	if includeFull {
		r.FullMetadata = b.files
	}
	return r
}

// Files lists the report's file paths, sorted.
func (r *Report) Files() []string {
	out := make([]string, 0, len(r.FullMetadata))
	for path := range r.FullMetadata {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Raw rebuilds a metadata table for one file in the report, for tools that
// consume reports instead of re-extracting (the mapping advisor).
func (r *Report) Raw(path string) (*metadata.Raw, bool) {
	fm, ok := r.FullMetadata[path]
	if !ok {
		return nil, false
	}
	raw := metadata.NewRaw()
	fileTags := sortedKeys(fm.File)
	for _, tag := range fileTags {
		raw.Replace(metadata.TagRef{Source: metadata.SourceFile, Tag: tag}, fm.File[tag])
	}
	for _, source := range sortedKeys(fm.Sources) {
		tags := fm.Sources[source]
		for _, tag := range sortedKeys(tags) {
			raw.Replace(metadata.TagRef{Source: source, Tag: tag}, tags[tag])
		}
	}
	return raw, true
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Load reads a report from disk.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}
