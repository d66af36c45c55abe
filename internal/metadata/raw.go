package metadata

import (
	"sort"
	"strconv"
)

// Reserved source labels. SourceFile carries file-level pseudo-tags (name,
// path, size) that no extraction library reports; SourceCustom republishes
// proprietary TIFF tags so connectors can address them without knowing which
// backend found them.
const (
	SourceFile   = "file"
	SourceCustom = "custom"
)

// File pseudo-tags published under SourceFile.
const (
	TagFileName     = "Name"
	TagFilePath     = "Path"
	TagFileSize     = "Size"
	TagFileModified = "Modified"
	TagFileFormat   = "Format"
)

// Custom TIFF tag ID range reserved for manufacturer-proprietary data.
const (
	CustomTagMin = 32000
	CustomTagMax = 32999
)

// IsCustomTagID reports whether a numeric TIFF tag ID falls in the
// proprietary range.
func IsCustomTagID(id int) bool {
	return id >= CustomTagMin && id <= CustomTagMax
}

// CustomTagName is the tag name a custom tag is published under: its decimal
// ID.
func CustomTagName(id int) string {
	return strconv.Itoa(id)
}

// TagRef addresses one raw metadata value by the backend that produced it and
// the tag name within that backend.
type TagRef struct {
	Source string `json:"source"`
	Tag    string `json:"tag"`
}

func (r TagRef) String() string {
	return r.Source + "." + r.Tag
}

// Raw is the per-file metadata table: one value per (source, tag). It is
// filled once by the extractor and read-only afterwards.
type Raw struct {
	values map[TagRef]Value
	order  []TagRef
}

func NewRaw() *Raw {
	return &Raw{values: make(map[TagRef]Value)}
}

// Put stores a value only if the ref is not already present and reports
// whether it stored. This is the primitive behind first-source-wins merging.
func (r *Raw) Put(ref TagRef, v Value) bool {
	if _, ok := r.values[ref]; ok {
		return false
	}
	r.values[ref] = v
	r.order = append(r.order, ref)
	return true
}

// Replace stores a value unconditionally, keeping the ref's original
// insertion position when it already existed.
func (r *Raw) Replace(ref TagRef, v Value) {
	if _, ok := r.values[ref]; !ok {
		r.order = append(r.order, ref)
	}
	r.values[ref] = v
}

func (r *Raw) Lookup(ref TagRef) (Value, bool) {
	v, ok := r.values[ref]
	return v, ok
}

func (r *Raw) Get(source, tag string) (Value, bool) {
	return r.Lookup(TagRef{Source: source, Tag: tag})
}

func (r *Raw) Len() int {
	return len(r.values)
}

// Refs returns every stored ref in insertion order.
func (r *Raw) Refs() []TagRef {
	out := make([]TagRef, len(r.order))
	copy(out, r.order)
	return out
}

// Sources returns the distinct source labels, sorted.
func (r *Raw) Sources() []string {
	seen := make(map[string]bool)
	for _, ref := range r.order {
		seen[ref.Source] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// TagsBySource returns tag names grouped by source, each group sorted.
func (r *Raw) TagsBySource() map[string][]string {
	grouped := make(map[string][]string)
	for _, ref := range r.order {
		grouped[ref.Source] = append(grouped[ref.Source], ref.Tag)
	}
	for s := range grouped {
		sort.Strings(grouped[s])
	}
	return grouped
}

// CustomRefs returns the refs published under the custom source, sorted by
// tag ID.
func (r *Raw) CustomRefs() []TagRef {
	var out []TagRef
	for _, ref := range r.order {
		if ref.Source == SourceCustom {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
