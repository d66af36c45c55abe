// Package header assembles and validates FA 4.0 standardized header
// documents.
package header

import (
	"github.com/fa-metadata/fa40/internal/connector"
)

// Fixed General Section literals present in every generated header.
const (
	HeaderType    = "FA4.0 standardized header"
	HeaderVersion = "v1.0"
)

// TimeLayout is ISO 8601 with microsecond precision, used for the generation
// Time Stamp and by normalized timestamp fields.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Quantity is a measured field value carrying its unit.
type Quantity struct {
	Value any    `json:"Value"`
	Unit  string `json:"Unit"`
}

// Section maps field names to scalars or Quantity values.
type Section map[string]any

// Header is one FA 4.0 header document: the six canonical sections, each a
// field map. Fields that could not be resolved are absent, never nil.
type Header map[string]Section

// New returns a header with all canonical sections present and empty.
func New() Header {
	h := make(Header, len(connector.CanonicalSections))
	for _, s := range connector.CanonicalSections {
		h[s] = Section{}
	}
	return h
}

// Set stores a field value, creating the section if a connector addressed a
// non-canonical one (the loader rejects those, so this is belt and braces
// for hand-built headers in tests).
func (h Header) Set(section, field string, value any) {
	sec, ok := h[section]
	if !ok {
		sec = Section{}
		h[section] = sec
	}
	sec[field] = value
}

// Lookup resolves a "Section.Field" path.
func (h Header) Lookup(path string) (any, bool) {
	section, field, ok := connector.SplitFieldPath(path)
	if !ok {
		return nil, false
	}
	sec, ok := h[section]
	if !ok {
		return nil, false
	}
	v, ok := sec[field]
	return v, ok
}

// Has reports presence of a "Section.Field" path.
func (h Header) Has(path string) bool {
	_, ok := h.Lookup(path)
	return ok
}
