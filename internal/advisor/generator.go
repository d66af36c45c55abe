package advisor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fa-metadata/fa40/internal/connector"
	"github.com/fa-metadata/fa40/internal/metadata"
	"github.com/fa-metadata/fa40/internal/transform"
)

// Suggestions below this confidence are not promoted into a generated
// connector skeleton.
const promoteFloor = 0.6

// Fields the FA 4.0 standard treats as mandatory when mappable at all.
var requiredWhenMapped = map[string]bool{
	"General Section.File Name":    true,
	"General Section.File Size":    true,
	"General Section.Image Width":  true,
	"General Section.Image Height": true,
}

// GenerateConnector builds a starter connector from the advisor's
// suggestions: the best candidate per target field above the promotion
// floor, plus a Tool Specific entry per custom tag. The result is a starting
// point for a human, not a finished connector.
func GenerateConnector(raw *metadata.Raw, suggestions []Suggestion, name string, now time.Time) *connector.Connector {
	conn := &connector.Connector{
		Metadata: connector.Metadata{
			Name:         name,
			Version:      "1.0.0",
			Description:  fmt.Sprintf("Auto-generated connector created on %s", now.Format("2006-01-02 15:04:05")),
			SourceType:   "TIFF",
			TargetFormat: "FA4.0",
		},
		Identification: connector.Identification{Rules: []connector.MatchRule{}},
		Mappings:       make(map[string]map[string]connector.FieldMapping),
		Validation: connector.Validation{
			RequiredFields: []string{},
			OptionalFields: []string{},
		},
	}

	// Best-first input order means the first suggestion seen per field wins;
	// later ones become fallback candidates.
	byField := make(map[string][]metadata.TagRef)
	var fieldOrder []string
	for _, s := range suggestions {
		if s.Score < promoteFloor {
			continue
		}
		if _, seen := byField[s.TargetField]; !seen {
			fieldOrder = append(fieldOrder, s.TargetField)
		}
		byField[s.TargetField] = append(byField[s.TargetField], metadata.TagRef{Source: s.Source, Tag: s.Tag})
	}
	sort.Strings(fieldOrder)

	for _, path := range fieldOrder {
		section, field, ok := connector.SplitFieldPath(path)
		if !ok || !connector.IsCanonicalSection(section) {
			continue
		}
		fm := connector.FieldMapping{
			Sources:     dedupe(byField[path]),
			Required:    requiredWhenMapped[path],
			Description: "auto-mapped, review before use",
		}
		fm.Transform, fm.Unit = guessTransformAndUnit(field)
		addMapping(conn, section, field, fm)
	}

	for _, ref := range raw.CustomRefs() {
		field := "Custom Tag " + ref.Tag
		addMapping(conn, "Tool Specific", field, connector.FieldMapping{
			Sources:     []metadata.TagRef{ref},
			Transform:   transform.StringClean,
			Description: fmt.Sprintf("custom tag %s from source equipment", ref.Tag),
		})
	}

	sort.Strings(conn.Validation.RequiredFields)
	sort.Strings(conn.Validation.OptionalFields)
	return conn
}

func addMapping(conn *connector.Connector, section, field string, fm connector.FieldMapping) {
	if conn.Mappings[section] == nil {
		conn.Mappings[section] = make(map[string]connector.FieldMapping)
	}
	conn.Mappings[section][field] = fm
	path := connector.FieldPath(section, field)
	if fm.Required {
		conn.Validation.RequiredFields = append(conn.Validation.RequiredFields, path)
	} else {
		conn.Validation.OptionalFields = append(conn.Validation.OptionalFields, path)
	}
}

func dedupe(refs []metadata.TagRef) []metadata.TagRef {
	seen := make(map[metadata.TagRef]bool, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// guessTransformAndUnit applies FA 4.0 field conventions: pixel sizes come
// from DPI resolutions, dimensions are pixel counts, timestamps are
// normalized, and free-text fields get cleaned.
func guessTransformAndUnit(field string) (transformName, unit string) {
	f := normalize(field)
	switch {
	case f == "pixelwidth" || f == "pixelheight":
		return transform.DPIToNanometers, "nm"
	case f == "imagewidth" || f == "imageheight":
		return transform.NumericExtract, "pixels"
	case f == "bitdepth":
		return transform.NumericExtract, "bits"
	case f == "filesize":
		return transform.NumericExtract, "bytes"
	case strings.Contains(f, "timestamp") || strings.Contains(f, "date"):
		return transform.TimestampNormalize, ""
	case f == "colormode":
		return transform.ColorModeNormalize, ""
	case numericField(f):
		return transform.NumericExtract, ""
	}
	return transform.StringClean, ""
}

// CustomTagID parses a custom tag name back into its numeric ID, for
// display.
func CustomTagID(tag string) (int, bool) {
	id, err := strconv.Atoi(tag)
	if err != nil || !metadata.IsCustomTagID(id) {
		return 0, false
	}
	return id, true
}
