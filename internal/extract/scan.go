package extract

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var tiffExtensions = map[string]bool{
	".tif":   true,
	".tiff":  true,
	".tif32": true,
}

// IsTIFF reports whether the path looks like a TIFF file by extension.
func IsTIFF(path string) bool {
	return tiffExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanDirectory lists the TIFF files under dir, sorted. Without recursive,
// only the directory's own entries are considered.
func ScanDirectory(dir string, recursive bool) ([]string, error) {
	var files []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsTIFF(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsTIFF(entry.Name()) {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
