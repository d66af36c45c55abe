// Package advisor scores candidate mappings from raw metadata tags to FA 4.0
// header fields. Its output is advisory: a human promotes suggestions into a
// connector, nothing consumes them automatically.
package advisor

import (
	"sort"
	"strings"

	"github.com/fa-metadata/fa40/internal/connector"
	"github.com/fa-metadata/fa40/internal/metadata"
)

// Suggestion is one scored (source tag -> target field) candidate.
type Suggestion struct {
	Source      string         `json:"source"`
	Tag         string         `json:"tag"`
	Value       metadata.Value `json:"value"`
	TargetField string         `json:"target_field"`
	Score       float64        `json:"score"`
	Notes       string         `json:"notes,omitempty"`
}

// Candidates below this score are noise and never reported.
const scoreFloor = 0.3

// Known synonyms between FA 4.0 field vocabulary and the tag names the
// extraction libraries emit. Keys and values are normalized (lowercase,
// alphanumeric only).
var synonyms = map[string][]string{
	"imagewidth":          {"width"},
	"imageheight":         {"imagelength", "height", "length"},
	"bitdepth":            {"bitspersample"},
	"filename":            {"documentname", "name"},
	"filesize":            {"size"},
	"fileformat":          {"format"},
	"manufacturer":        {"make"},
	"toolname":            {"model"},
	"software":            {"version"},
	"serialnumber":        {"serial"},
	"timestamp":           {"datetime", "creationtime", "date", "modified"},
	"pixelwidth":          {"xresolution"},
	"pixelheight":         {"yresolution"},
	"colormode":           {"mode", "photometricinterpretation", "photometric"},
	"magnification":       {"zoom", "mag"},
	"acceleratingvoltage": {"voltage", "kv"},
	"workingdistance":     {"wd"},
	"detector":            {"signal"},
	"probecurrent":        {"current"},
}

// Numeric target fields: a non-numeric source value makes these matches
// nearly worthless.
var numericFieldHints = []string{
	"width", "height", "size", "depth", "resolution", "magnification",
	"voltage", "current", "distance", "temperature", "pressure",
}

// Suggest scores every (raw tag, target field) pair and returns the
// candidates above the floor, best first. targetPaths are "Section.Field"
// paths, normally the schema's enumeration. Ordering is deterministic: score
// descending, then source tag, then target field.
func Suggest(raw *metadata.Raw, targetPaths []string) []Suggestion {
	var out []Suggestion
	for _, ref := range raw.Refs() {
		v, _ := raw.Lookup(ref)
		if ref.Source == metadata.SourceCustom {
			// Custom tags are duplicates of a backend's entry; scoring both
			// would double-report.
			continue
		}
		for _, path := range targetPaths {
			_, field, ok := connector.SplitFieldPath(path)
			if !ok {
				continue
			}
			score := scorePair(field, ref.Tag, v)
			if score <= scoreFloor {
				continue
			}
			out = append(out, Suggestion{
				Source:      ref.Source,
				Tag:         ref.Tag,
				Value:       v,
				TargetField: path,
				Score:       score,
				Notes:       notes(field, ref, v),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Tag != out[j].Tag {
			return out[i].Tag < out[j].Tag
		}
		return out[i].TargetField < out[j].TargetField
	})
	return out
}

func scorePair(field, tag string, v metadata.Value) float64 {
	f := normalize(field)
	t := normalize(tag)
	if f == "" || t == "" {
		return 0
	}

	score := 0.0
	switch {
	case f == t:
		score = 1.0
	case strings.Contains(t, f) || strings.Contains(f, t):
		score = 0.8
	case isSynonym(f, t):
		score = 0.7
	default:
		if sim := similarity(f, t); sim >= 0.75 {
			score = 0.6 * sim
		}
	}

	if score > 0 && numericField(f) && !v.IsNumeric() && !hasDigit(v.Text()) {
		score *= 0.2
	}
	if score > 1 {
		score = 1
	}
	return score
}

func isSynonym(field, tag string) bool {
	for _, s := range synonyms[field] {
		if tag == s || strings.Contains(tag, s) {
			return true
		}
	}
	return false
}

func numericField(normalized string) bool {
	for _, hint := range numericFieldHints {
		if strings.Contains(normalized, hint) {
			return true
		}
	}
	return false
}

func notes(field string, ref metadata.TagRef, v metadata.Value) string {
	var parts []string
	f := normalize(field)
	if strings.Contains(f, "resolution") || f == "pixelwidth" || f == "pixelheight" {
		parts = append(parts, "may need unit conversion (dpi-to-nm)")
	}
	if strings.Contains(f, "timestamp") || strings.Contains(f, "date") {
		parts = append(parts, "check ISO 8601 conformance (timestamp-normalize)")
	}
	if strings.HasPrefix(ref.Tag, "Tag") || ref.Source == metadata.SourceCustom {
		parts = append(parts, "proprietary tag, verify meaning against vendor docs")
	}
	if v.Kind == metadata.KindBytes {
		parts = append(parts, "byte payload, likely needs string-clean")
	}
	return strings.Join(parts, "; ")
}

// normalize lowercases and strips everything but letters and digits so
// "Image Width", "image_width" and "ImageWidth" compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// similarity is a Levenshtein ratio in [0, 1].
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}
	distance := levenshteinDistance(s1, s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
