package header

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fa-metadata/fa40/internal/connector"
	"github.com/fa-metadata/fa40/internal/metadata"
	"github.com/fa-metadata/fa40/internal/transform"
)

// Builder turns raw metadata into an FA 4.0 header under a connector's field
// mappings. The clock is injectable so that output is byte-reproducible
// under test.
type Builder struct {
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

// Build resolves every mapped field. For each field the candidate sources
// are tried in declared order; a transform returning no value makes the
// candidate fall through exactly like an absent one. Unresolvable fields are
// omitted. sourcePath is the input image path, used for the File Path
// fallback.
func (b *Builder) Build(raw *metadata.Raw, conn *connector.Connector, sourcePath string) Header {
	h := New()

	for section, fields := range conn.Mappings {
		for field, fm := range fields {
			v, ok := resolve(raw, fm)
			if !ok {
				slog.Debug("field unresolved", "field", connector.FieldPath(section, field))
				continue
			}
			if fm.Unit != "" {
				h.Set(section, field, Quantity{Value: v.Native(), Unit: fm.Unit})
			} else {
				h.Set(section, field, v.Native())
			}
		}
	}

	// Fixed metadata not derived from the source file.
	general := h["General Section"]
	general["Header Type"] = HeaderType
	general["Version"] = HeaderVersion
	general["Time Stamp"] = b.Now().Format(TimeLayout)
	if _, ok := general["File Path"]; !ok && sourcePath != "" {
		general["File Path"] = filepath.Dir(sourcePath)
	}

	return h
}

func resolve(raw *metadata.Raw, fm connector.FieldMapping) (metadata.Value, bool) {
	for _, ref := range fm.Sources {
		v, ok := raw.Lookup(ref)
		if !ok {
			continue
		}
		if fm.Transform != "" {
			tv, ok := transform.Apply(fm.Transform, v)
			if !ok {
				continue
			}
			v = tv
		}
		return v, true
	}
	return metadata.Value{}, false
}
