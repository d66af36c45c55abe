// Package connector models the per-manufacturer mapping configuration that
// drives FA 4.0 header generation.
package connector

import (
	"strings"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// CanonicalSections are the fixed top-level sections of an FA 4.0 header, in
// document order. Connector mappings and validation paths address fields as
// "<Section>.<Field>" using these names.
var CanonicalSections = []string{
	"General Section",
	"Method Specific",
	"Tool Specific",
	"Customer Specific",
	"Data Evaluation",
	"History",
}

// IsCanonicalSection reports whether name is one of the six FA 4.0 sections.
func IsCanonicalSection(name string) bool {
	for _, s := range CanonicalSections {
		if s == name {
			return true
		}
	}
	return false
}

// Metadata describes the connector document itself.
type Metadata struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Description  string `json:"description,omitempty"`
	SourceType   string `json:"source_type,omitempty"`
	TargetFormat string `json:"target_format,omitempty"`
}

// MatchRule is one identification rule: the connector applies to a file when
// some raw value contains the given substring. An empty Tag matches any tag
// of the source; an empty Source matches any source.
type MatchRule struct {
	Source   string `json:"source,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Contains string `json:"contains"`
}

// Identification groups the match rules. All rules must hold for the
// connector to apply.
type Identification struct {
	Rules []MatchRule `json:"rules"`
}

// FieldMapping declares how one target field is resolved: candidate raw tags
// in fallback order, an optional transform, and an optional fixed unit.
type FieldMapping struct {
	Sources     []metadata.TagRef `json:"source"`
	Transform   string            `json:"transform,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Validation lists target field paths ("Section.Field") the connector
// declares required or optional.
type Validation struct {
	RequiredFields []string `json:"required_fields"`
	OptionalFields []string `json:"optional_fields"`
}

// Connector is one loaded connector document, immutable after Load.
type Connector struct {
	Metadata       Metadata                           `json:"metadata"`
	Identification Identification                     `json:"identification"`
	Mappings       map[string]map[string]FieldMapping `json:"mappings"`
	Validation     Validation                         `json:"validation"`
}

// Matches reports whether this connector applies to the given raw metadata.
// A connector with no rules matches everything.
func (c *Connector) Matches(raw *metadata.Raw) bool {
	for _, rule := range c.Identification.Rules {
		if !rule.matches(raw) {
			return false
		}
	}
	return true
}

func (r MatchRule) matches(raw *metadata.Raw) bool {
	needle := strings.ToLower(r.Contains)
	if r.Tag != "" {
		v, ok := raw.Get(r.Source, r.Tag)
		return ok && strings.Contains(strings.ToLower(v.Text()), needle)
	}
	for _, ref := range raw.Refs() {
		if r.Source != "" && ref.Source != r.Source {
			continue
		}
		v, _ := raw.Lookup(ref)
		if strings.Contains(strings.ToLower(v.Text()), needle) {
			return true
		}
	}
	return false
}

// FieldPath joins a section and field name into a validation path.
func FieldPath(section, field string) string {
	return section + "." + field
}

// SplitFieldPath splits "Section.Field" at the first dot. Section names
// contain spaces but never dots.
func SplitFieldPath(path string) (section, field string, ok bool) {
	i := strings.Index(path, ".")
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}
