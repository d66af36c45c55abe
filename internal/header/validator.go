package header

import (
	"sort"

	"github.com/fa-metadata/fa40/internal/connector"
)

// ValidationResult enumerates completeness gaps in a built header. It is a
// report, not an error: header generation always succeeds regardless of
// content.
type ValidationResult struct {
	MissingRequired []string `json:"missing_required"`
	PresentOptional []string `json:"present_optional"`
	UnknownFields   []string `json:"unknown_fields,omitempty"`
}

// Complete reports whether every required field resolved.
func (r ValidationResult) Complete() bool {
	return len(r.MissingRequired) == 0
}

// Validate checks a built header against the connector's required and
// optional field lists. knownFields, when non-nil, maps section names to the
// schema's valid field names; header fields outside it are reported as
// unknown for diagnostics. The header is never mutated and validation never
// fails.
func Validate(h Header, conn *connector.Connector, knownFields map[string][]string) ValidationResult {
	res := ValidationResult{
		MissingRequired: []string{},
		PresentOptional: []string{},
	}

	for _, path := range conn.Validation.RequiredFields {
		if !h.Has(path) {
			res.MissingRequired = append(res.MissingRequired, path)
		}
	}
	for _, path := range conn.Validation.OptionalFields {
		if h.Has(path) {
			res.PresentOptional = append(res.PresentOptional, path)
		}
	}

	if knownFields != nil {
		known := make(map[string]map[string]bool, len(knownFields))
		for section, fields := range knownFields {
			m := make(map[string]bool, len(fields))
			for _, f := range fields {
				m[f] = true
			}
			known[section] = m
		}
		for section, fields := range h {
			schemaFields, ok := known[section]
			if !ok {
				continue
			}
			for field := range fields {
				if !schemaFields[field] {
					res.UnknownFields = append(res.UnknownFields, connector.FieldPath(section, field))
				}
			}
		}
		sort.Strings(res.UnknownFields)
	}

	return res
}
