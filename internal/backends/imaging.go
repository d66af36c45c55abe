package backends

import (
	"fmt"
	"image/color"
	"os"

	"golang.org/x/image/tiff"

	"github.com/fa-metadata/fa40/internal/metadata"
)

// Imaging reads basic image properties (dimensions, color model) via the
// image decoder's config pass, without decoding pixels. It fills the role
// the original toolchain covered with a general-purpose imaging library.
type Imaging struct{}

func (Imaging) Name() string { return "imaging" }

func (Imaging) Extract(path string) (map[string]metadata.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	cfg, err := tiff.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return map[string]metadata.Value{
		"Width":  metadata.Int(int64(cfg.Width)),
		"Height": metadata.Int(int64(cfg.Height)),
		"Mode":   metadata.String(colorModeToken(cfg.ColorModel)),
		"Format": metadata.String("TIFF"),
	}, nil
}

// colorModeToken names the color model with the short tokens connector
// authors know from the original tooling ("L", "P", "RGB", "CMYK").
func colorModeToken(m color.Model) string {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.CMYKModel:
		return "CMYK"
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGB"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return "RGB"
}
