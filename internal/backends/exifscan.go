package backends

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	tifftag "github.com/rwcarlsen/goexif/tiff"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// ExifScan reads named EXIF fields. Many microscope vendors write standard
// EXIF alongside their proprietary tags, so this backend often fills gaps
// the raw IFD walk leaves (maker-interpreted fields, sub-IFD data).
type ExifScan struct{}

func (ExifScan) Name() string { return "exifscan" }

func (ExifScan) Extract(path string) (map[string]metadata.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tags := make(map[string]metadata.Value)
	w := walkFunc(func(name exif.FieldName, tag *tifftag.Tag) error {
		if _, seen := tags[string(name)]; !seen {
			tags[string(name)] = tagValue(tag)
		}
		return nil
	})
	if err := x.Walk(w); err != nil {
		return tags, fmt.Errorf("exif walk aborted: %w", err)
	}
	return tags, nil
}

type walkFunc func(exif.FieldName, *tifftag.Tag) error

func (f walkFunc) Walk(name exif.FieldName, tag *tifftag.Tag) error {
	return f(name, tag)
}
