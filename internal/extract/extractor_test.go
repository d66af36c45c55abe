package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fa-metadata/fa40/internal/backends"
	"github.com/fa-metadata/fa40/internal/metadata"
)

// fakeBackend returns canned tags, standing in for a real decoder.
type fakeBackend struct {
	name string
	tags map[string]metadata.Value
	err  error
}

func (f fakeBackend) Name() string { return f.name }

func (f fakeBackend) Extract(path string) (map[string]metadata.Value, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags, nil
}

func writeTIFF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.tif")
	if err := os.WriteFile(path, []byte("not a real image"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFilePseudoTags(t *testing.T) {
	path := writeTIFF(t)
	raw, failures, err := New(nil, MergeFirstWins).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("Expected no failures, got %v", failures)
	}

	name, _ := raw.Get(metadata.SourceFile, metadata.TagFileName)
	if name.Text() != "scan.tif" {
		t.Errorf("Expected file name scan.tif, got %q", name.Text())
	}
	size, _ := raw.Get(metadata.SourceFile, metadata.TagFileSize)
	if got, _ := size.AsInt(); got != 16 {
		t.Errorf("Expected size 16, got %d", got)
	}
	format, _ := raw.Get(metadata.SourceFile, metadata.TagFileFormat)
	if format.Text() != "TIFF" {
		t.Errorf("Expected format TIFF, got %q", format.Text())
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, _, err := Default().Extract(filepath.Join(t.TempDir(), "nope.tif"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestExtractMergeFirstWins(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "a", tags: map[string]metadata.Value{
			"Software": metadata.String("from-a"),
			"Make":     metadata.String("SemiShop"),
		}},
		fakeBackend{name: "b", tags: map[string]metadata.Value{
			"Software": metadata.String("from-b"),
			"Model":    metadata.String("FIB-2000"),
		}},
	}
	raw, _, err := New(bs, MergeFirstWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatal(err)
	}

	// Same tag name under different sources never collides.
	if v, ok := raw.Get("a", "Software"); !ok || v.Text() != "from-a" {
		t.Errorf("Expected a.Software=from-a, got %v", v.Text())
	}
	if v, ok := raw.Get("b", "Software"); !ok || v.Text() != "from-b" {
		t.Errorf("Expected b.Software=from-b, got %v", v.Text())
	}
	if _, ok := raw.Get("b", "Model"); !ok {
		t.Error("Expected b.Model present")
	}
}

func TestExtractMergePolicyOnCustomTags(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "a", tags: map[string]metadata.Value{
			"32001": metadata.String("station-1"),
		}},
		fakeBackend{name: "b", tags: map[string]metadata.Value{
			"32001": metadata.String("station-2"),
		}},
	}

	raw, _, err := New(bs, MergeFirstWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := raw.Get(metadata.SourceCustom, "32001"); v.Text() != "station-1" {
		t.Errorf("first-wins: expected custom.32001=station-1, got %q", v.Text())
	}

	raw, _, err = New(bs, MergeLastWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := raw.Get(metadata.SourceCustom, "32001"); v.Text() != "station-2" {
		t.Errorf("last-wins: expected custom.32001=station-2, got %q", v.Text())
	}
}

func TestExtractCustomTagsRepublished(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "a", tags: map[string]metadata.Value{
			"32000": metadata.String("station-7"),
			"32999": metadata.Int(9),
			"33000": metadata.String("outside range"),
			"Make":  metadata.String("SemiShop"),
		}},
	}
	raw, _, err := New(bs, MergeFirstWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatal(err)
	}

	refs := raw.CustomRefs()
	if len(refs) != 2 {
		t.Fatalf("Expected 2 custom refs, got %v", refs)
	}
	if refs[0].Tag != "32000" || refs[1].Tag != "32999" {
		t.Errorf("Expected tags 32000 and 32999, got %v", refs)
	}
	// The backend's own entry stays addressable too.
	if _, ok := raw.Get("a", "32000"); !ok {
		t.Error("Expected the original backend entry to survive republishing")
	}
}

func TestExtractBackendFailureIsRecorded(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "broken", err: errors.New("truncated IFD")},
		fakeBackend{name: "skipped", err: backends.ErrUnavailable},
		fakeBackend{name: "working", tags: map[string]metadata.Value{
			"Make": metadata.String("SemiShop"),
		}},
	}
	raw, failures, err := New(bs, MergeFirstWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatalf("Backend failure must not fail extraction: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("Expected 2 recorded failures, got %v", failures)
	}
	if failures[0].Backend != "broken" || failures[1].Backend != "skipped" {
		t.Errorf("Expected failures in backend order, got %v", failures)
	}
	if _, ok := raw.Get("working", "Make"); !ok {
		t.Error("Expected remaining backend to still contribute")
	}
}

func TestExtractAllBackendsFailing(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "a", err: errors.New("bad magic")},
		fakeBackend{name: "b", err: errors.New("bad magic")},
	}
	raw, failures, err := New(bs, MergeFirstWins).Extract(writeTIFF(t))
	if err != nil {
		t.Fatalf("Expected a valid empty outcome, got %v", err)
	}
	if len(failures) != 2 {
		t.Errorf("Expected 2 failures, got %d", len(failures))
	}
	// The file pseudo-tags are still there.
	if _, ok := raw.Get(metadata.SourceFile, metadata.TagFileName); !ok {
		t.Error("Expected file pseudo-tags despite backend failures")
	}
}

func TestExtractDeterministicOrder(t *testing.T) {
	bs := []backends.Backend{
		fakeBackend{name: "a", tags: map[string]metadata.Value{
			"Zeta": metadata.Int(1), "Alpha": metadata.Int(2), "Mid": metadata.Int(3),
		}},
	}
	path := writeTIFF(t)
	ex := New(bs, MergeFirstWins)

	first, _, err := ex.Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	for range 10 {
		again, _, err := ex.Extract(path)
		if err != nil {
			t.Fatal(err)
		}
		a, b := first.Refs(), again.Refs()
		if len(a) != len(b) {
			t.Fatalf("Ref count changed between runs: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("Ref order changed at %d: %v vs %v", i, a[i], b[i])
			}
		}
	}
}

func TestByName(t *testing.T) {
	bs, err := ByName([]string{"exifscan", "imaging"})
	if err != nil {
		t.Fatal(err)
	}
	if bs[0].Name() != "exifscan" || bs[1].Name() != "imaging" {
		t.Errorf("Expected configured order preserved, got %v, %v", bs[0].Name(), bs[1].Name())
	}
	if _, err := ByName([]string{"pillow"}); err == nil {
		t.Error("Expected error for unknown backend name")
	}
}
