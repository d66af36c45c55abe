package connector

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fa-metadata/fa40/internal/transform"
)

// ConfigError reports every structural problem found in a connector
// document at once, so an author fixes one round of issues instead of
// replaying load-fail cycles.
type ConfigError struct {
	Path   string
	Issues []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("connector %s: %d issue(s):\n  - %s",
		e.Path, len(e.Issues), strings.Join(e.Issues, "\n  - "))
}

// Load reads and structurally validates a connector document. It performs no
// field resolution: only the document's own shape is checked. Any problem is
// a *ConfigError; the file being unreadable or unparseable is fatal on its
// own.
func Load(path string) (*Connector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connector: %w", err)
	}

	// Track key presence separately: an absent part and an empty part are
	// different authoring mistakes.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, &ConfigError{Path: path, Issues: []string{"invalid JSON: " + err.Error()}}
	}

	var conn Connector
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, &ConfigError{Path: path, Issues: []string{"invalid connector structure: " + err.Error()}}
	}

	var issues []string
	for _, part := range []string{"identification", "mappings", "validation"} {
		if _, ok := keys[part]; !ok {
			issues = append(issues, fmt.Sprintf("missing required part %q", part))
		}
	}

	issues = append(issues, checkMappings(&conn)...)
	issues = append(issues, checkValidation(&conn)...)

	if len(issues) > 0 {
		return nil, &ConfigError{Path: path, Issues: issues}
	}
	return &conn, nil
}

func checkMappings(conn *Connector) []string {
	var issues []string
	if len(conn.Mappings) == 0 {
		issues = append(issues, "mappings: no sections declared")
	}
	for section, fields := range conn.Mappings {
		if !IsCanonicalSection(section) {
			issues = append(issues, fmt.Sprintf("mappings: unknown section %q", section))
		}
		for field, fm := range fields {
			path := FieldPath(section, field)
			if len(fm.Sources) == 0 {
				issues = append(issues, fmt.Sprintf("%s: no candidate sources", path))
			}
			for i, ref := range fm.Sources {
				if ref.Source == "" || ref.Tag == "" {
					issues = append(issues, fmt.Sprintf("%s: candidate %d has empty source or tag", path, i))
				}
			}
			if fm.Transform != "" && !transform.Exists(fm.Transform) {
				issues = append(issues, fmt.Sprintf("%s: unknown transform %q (known: %s)",
					path, fm.Transform, strings.Join(transform.Names(), ", ")))
			}
		}
	}
	return issues
}

func checkValidation(conn *Connector) []string {
	var issues []string
	for _, kind := range []struct {
		label string
		paths []string
	}{
		{"required_fields", conn.Validation.RequiredFields},
		{"optional_fields", conn.Validation.OptionalFields},
	} {
		for _, p := range kind.paths {
			section, _, ok := SplitFieldPath(p)
			if !ok {
				issues = append(issues, fmt.Sprintf("validation: %s entry %q is not a Section.Field path", kind.label, p))
				continue
			}
			if !IsCanonicalSection(section) {
				issues = append(issues, fmt.Sprintf("validation: %s entry %q names unknown section %q", kind.label, p, section))
			}
		}
	}
	return issues
}
