package backends

import (
	tifftag "github.com/rwcarlsen/goexif/tiff"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// tagValue converts a decoded IFD tag into the closed Value union. Byte
// payloads of undefined or unknown format are preserved verbatim; cleaning
// them up is a transform's job.
func tagValue(t *tifftag.Tag) metadata.Value {
	n := int(t.Count)
	switch t.Format() {
	case tifftag.IntVal:
		return collect(n, func(i int) (metadata.Value, bool) {
			v, err := t.Int64(i)
			if err != nil {
				return metadata.Value{}, false
			}
			return metadata.Int(v), true
		})
	case tifftag.FloatVal:
		return collect(n, func(i int) (metadata.Value, bool) {
			v, err := t.Float(i)
			if err != nil {
				return metadata.Value{}, false
			}
			return metadata.Float(v), true
		})
	case tifftag.RatVal:
		return collect(n, func(i int) (metadata.Value, bool) {
			num, den, err := t.Rat2(i)
			if err != nil || den == 0 {
				return metadata.Value{}, false
			}
			return metadata.Float(float64(num) / float64(den)), true
		})
	case tifftag.StringVal:
		s, err := t.StringVal()
		if err != nil {
			return metadata.Bytes(t.Val)
		}
		return metadata.String(s)
	}
	return metadata.Bytes(t.Val)
}

func collect(n int, at func(int) (metadata.Value, bool)) metadata.Value {
	if n == 1 {
		if v, ok := at(0); ok {
			return v
		}
		return metadata.String("")
	}
	vs := make([]metadata.Value, 0, n)
	for i := 0; i < n; i++ {
		if v, ok := at(i); ok {
			vs = append(vs, v)
		}
	}
	return metadata.Seq(vs...)
}
