// Package transform holds the fixed registry of named value transforms a
// connector may reference. Every transform is pure and total: malformed
// input yields (zero, false), never a panic or error.
package transform

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// Registered transform names.
const (
	StringClean        = "string-clean"
	DPIToNanometers    = "dpi-to-nm"
	TimestampNormalize = "timestamp-normalize"
	ColorModeNormalize = "color-mode-normalize"
	NumericExtract     = "numeric-extract"
)

// Func converts one raw value. ok=false signals "no usable value": the
// header builder treats it exactly like an absent candidate.
type Func func(metadata.Value) (metadata.Value, bool)

var registry = map[string]Func{
	StringClean:        cleanString,
	DPIToNanometers:    dpiToNanometers,
	TimestampNormalize: normalizeTimestamp,
	ColorModeNormalize: normalizeColorMode,
	NumericExtract:     extractNumeric,
}

// Exists reports whether name is a registered transform. The connector
// loader rejects unknown names, so Apply never sees one in normal operation.
func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the registered transform names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Apply runs the named transform. An unknown name yields no value.
func Apply(name string, v metadata.Value) (metadata.Value, bool) {
	fn, ok := registry[name]
	if !ok {
		return metadata.Value{}, false
	}
	return fn(v)
}

// stripControl removes null bytes and other non-printable control
// characters (C0, DEL, C1), the usual artifacts of fixed-width TIFF string
// fields.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}

func cleanString(v metadata.Value) (metadata.Value, bool) {
	s := strings.TrimSpace(stripControl(v.Text()))
	if s == "" {
		return metadata.Value{}, false
	}
	return metadata.String(s), true
}

// Nanometers per inch: 1 in = 25.4 mm = 25,400,000 nm.
const nanometersPerInch = 25_400_000

func dpiToNanometers(v metadata.Value) (metadata.Value, bool) {
	n, ok := firstNumber(v)
	if !ok {
		return metadata.Value{}, false
	}
	dpi, _ := n.AsFloat()
	if dpi <= 0 {
		return metadata.Value{}, false
	}
	nm := nanometersPerInch / dpi
	return metadata.Float(math.Round(nm*100) / 100), true
}

// Recognized timestamp layouts, tried in order. The first is the EXIF/TIFF
// DateTime convention.
var timestampLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006:01:02",
}

// isoMicro is the output layout: ISO 8601 with microsecond precision.
const isoMicro = "2006-01-02T15:04:05.000000"

func normalizeTimestamp(v metadata.Value) (metadata.Value, bool) {
	s := strings.TrimSpace(stripControl(v.Text()))
	if s == "" {
		return metadata.Value{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return metadata.String(t.Format(isoMicro)), true
		}
	}
	return metadata.Value{}, false
}

var colorModes = map[string]string{
	"l":         "grayscale",
	"gray":      "grayscale",
	"grey":      "grayscale",
	"grayscale": "grayscale",
	"greyscale": "grayscale",
	"rgb":       "rgb",
	"rgba":      "rgb",
	"p":         "palette",
	"palette":   "palette",
}

func normalizeColorMode(v metadata.Value) (metadata.Value, bool) {
	token := strings.ToLower(strings.TrimSpace(stripControl(v.Text())))
	if token == "" {
		return metadata.Value{}, false
	}
	if mode, ok := colorModes[token]; ok {
		return metadata.String(mode), true
	}
	return metadata.String("other"), true
}

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

func extractNumeric(v metadata.Value) (metadata.Value, bool) {
	return firstNumber(v)
}

// firstNumber pulls the first numeric reading out of a value: numbers pass
// through, sequences defer to their first element, strings give up their
// first numeric substring.
func firstNumber(v metadata.Value) (metadata.Value, bool) {
	switch v.Kind {
	case metadata.KindInt, metadata.KindFloat:
		return v, true
	case metadata.KindSeq:
		return firstNumber(v.First())
	}
	s := v.Text()
	match := numberPattern.FindString(s)
	if match == "" {
		return metadata.Value{}, false
	}
	if strings.Contains(match, ".") {
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return metadata.Value{}, false
		}
		return metadata.Float(f), true
	}
	i, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return metadata.Value{}, false
	}
	return metadata.Int(i), true
}
