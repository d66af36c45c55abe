// Package inspect answers questions about an extraction report: which tags
// exist, what a specific tag holds, and how a tag varies across files. It
// exists to help a human author connector mappings.
package inspect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/fa-metadata/fa40/internal/metadata"
	"github.com/fa-metadata/fa40/internal/report"
)

// Match is one tag hit with its value.
type Match struct {
	Ref   metadata.TagRef
	Value metadata.Value
}

// FileByIndex resolves the Nth file of a report (sorted order, the order
// `list` prints).
func FileByIndex(r *report.Report, index int) (string, report.FileMetadata, bool) {
	files := r.Files()
	if index < 0 || index >= len(files) {
		return "", report.FileMetadata{}, false
	}
	return files[index], r.FullMetadata[files[index]], true
}

// SearchTags finds tags whose name contains pattern, case-insensitively,
// across all sources of one file. Results are ordered by source then tag.
func SearchTags(fm report.FileMetadata, pattern string) []Match {
	needle := strings.ToLower(pattern)
	var out []Match

	for tag, v := range fm.File {
		if strings.Contains(strings.ToLower(tag), needle) {
			out = append(out, Match{Ref: metadata.TagRef{Source: metadata.SourceFile, Tag: tag}, Value: v})
		}
	}
	for source, tags := range fm.Sources {
		for tag, v := range tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				out = append(out, Match{Ref: metadata.TagRef{Source: source, Tag: tag}, Value: v})
			}
		}
	}

	sortMatches(out)
	return out
}

// CustomTags lists the proprietary tags (IDs 32000-32999) of one file.
func CustomTags(fm report.FileMetadata) []Match {
	var out []Match
	for source, tags := range fm.Sources {
		for tag, v := range tags {
			id, err := strconv.Atoi(tag)
			if err != nil || !metadata.IsCustomTagID(id) {
				continue
			}
			out = append(out, Match{Ref: metadata.TagRef{Source: source, Tag: tag}, Value: v})
		}
	}
	sortMatches(out)
	return out
}

// CompareAcross collects one tag's matches for every file in the report,
// keyed by file path. Files without a match are omitted.
func CompareAcross(r *report.Report, tag string) map[string][]Match {
	out := make(map[string][]Match)
	for _, file := range r.Files() {
		matches := SearchTags(r.FullMetadata[file], tag)
		if len(matches) > 0 {
			out[file] = matches
		}
	}
	return out
}

// Preview renders a value for display, truncated to 100 runes.
func Preview(v metadata.Value) string {
	s := v.Text()
	runes := []rune(s)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return s
}

func sortMatches(ms []Match) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Ref.Source != ms[j].Ref.Source {
			return ms[i].Ref.Source < ms[j].Ref.Source
		}
		return ms[i].Ref.Tag < ms[j].Ref.Tag
	})
}
