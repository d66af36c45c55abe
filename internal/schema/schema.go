// Package schema reads the static FA 4.0 schema directory: one JSON file per
// header section enumerating its valid fields. The files are consumed
// read-only, for field-name enumeration by the validator and the mapping
// advisor.
package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fa-metadata/fa40/internal/connector"
)

// Schema holds the valid field names per section.
type Schema struct {
	fields map[string][]string
}

// Load reads "<Section>.json" for each canonical section from dir. The
// source documents carry //-style comment lines, which plain JSON parsers
// reject, so those are stripped first. Missing or malformed section files
// are logged and skipped; only an unusable directory is an error.
func Load(dir string) (*Schema, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("schema directory unavailable: %w", err)
	}

	s := &Schema{fields: make(map[string][]string)}
	for _, section := range connector.CanonicalSections {
		path := filepath.Join(dir, section+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("schema file unavailable", "section", section, "err", err)
			continue
		}

		var doc map[string]json.RawMessage
		if err := json.Unmarshal(stripComments(data), &doc); err != nil {
			slog.Warn("schema file malformed", "section", section, "err", err)
			continue
		}

		names := make([]string, 0, len(doc))
		for name := range doc {
			names = append(names, name)
		}
		sort.Strings(names)
		s.fields[section] = names
	}

	if len(s.fields) == 0 {
		return nil, fmt.Errorf("no schema files loaded from %s", dir)
	}
	return s, nil
}

func stripComments(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return []byte(strings.Join(kept, "\n"))
}

// Fields returns field names keyed by section name.
func (s *Schema) Fields() map[string][]string {
	return s.fields
}

// SectionFields returns the valid field names for one section.
func (s *Schema) SectionFields(section string) []string {
	return s.fields[section]
}

// Paths returns every "Section.Field" path in the schema, sorted.
func (s *Schema) Paths() []string {
	var out []string
	for section, fields := range s.fields {
		for _, f := range fields {
			out = append(out, connector.FieldPath(section, f))
		}
	}
	sort.Strings(out)
	return out
}
