package backends

import (
	"fmt"
	"os"
	"strconv"

	tifftag "github.com/rwcarlsen/goexif/tiff"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// TIFF baseline and extension tag names, keyed by ID. Tags outside this
// table keep a "Tag<ID>" name, except custom tags which are named by their
// decimal ID so connectors can address them directly.
var tiffTagNames = map[uint16]string{
	254:   "NewSubfileType",
	256:   "ImageWidth",
	257:   "ImageLength",
	258:   "BitsPerSample",
	259:   "Compression",
	262:   "PhotometricInterpretation",
	266:   "FillOrder",
	269:   "DocumentName",
	270:   "ImageDescription",
	271:   "Make",
	272:   "Model",
	273:   "StripOffsets",
	274:   "Orientation",
	277:   "SamplesPerPixel",
	278:   "RowsPerStrip",
	279:   "StripByteCounts",
	282:   "XResolution",
	283:   "YResolution",
	284:   "PlanarConfiguration",
	285:   "PageName",
	296:   "ResolutionUnit",
	297:   "PageNumber",
	305:   "Software",
	306:   "DateTime",
	315:   "Artist",
	316:   "HostComputer",
	317:   "Predictor",
	320:   "ColorMap",
	322:   "TileWidth",
	323:   "TileLength",
	324:   "TileOffsets",
	325:   "TileByteCounts",
	338:   "ExtraSamples",
	339:   "SampleFormat",
	33432: "Copyright",
	34665: "ExifIFDPointer",
}

// TIFFDir walks the raw IFD tag directories of a TIFF file. It is the only
// backend that surfaces manufacturer-proprietary tags (IDs 32000-32999)
// since those have no named EXIF counterpart.
type TIFFDir struct{}

func (TIFFDir) Name() string { return "tiffdir" }

func (TIFFDir) Extract(path string) (map[string]metadata.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	t, err := tifftag.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tags := make(map[string]metadata.Value)
	// IFD0 first: later directories (thumbnails, extra pages) never shadow
	// the primary image's tags.
	for _, dir := range t.Dirs {
		for _, tag := range dir.Tags {
			name := tiffTagName(tag.Id)
			if _, seen := tags[name]; seen {
				continue
			}
			tags[name] = tagValue(tag)
		}
	}
	return tags, nil
}

func tiffTagName(id uint16) string {
	if metadata.IsCustomTagID(int(id)) {
		return metadata.CustomTagName(int(id))
	}
	if name, ok := tiffTagNames[id]; ok {
		return name
	}
	return "Tag" + strconv.Itoa(int(id))
}
