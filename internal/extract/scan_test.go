package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIsTIFF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"scan.tif", true},
		{"scan.TIFF", true},
		{"scan.tif32", true},
		{"scan.png", false},
		{"scan", false},
		{"dir/scan.TIF", true},
	}
	for _, tt := range tests {
		if got := IsTIFF(tt.path); got != tt.want {
			t.Errorf("IsTIFF(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	touch := func(parts ...string) {
		t.Helper()
		path := filepath.Join(append([]string{dir}, parts...)...)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	touch("b.tif")
	touch("a.tiff")
	touch("notes.txt")
	touch("nested", "c.tif")

	flat, err := ScanDirectory(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.tiff"), filepath.Join(dir, "b.tif")}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Expected %v, got %v", want, flat)
	}

	deep, err := ScanDirectory(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	want = append(want, filepath.Join(dir, "nested", "c.tif"))
	if !reflect.DeepEqual(deep, want) {
		t.Errorf("Expected %v, got %v", want, deep)
	}
}
