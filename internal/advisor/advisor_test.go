package advisor

import (
	"testing"

	"github.com/fa-metadata/fa40/internal/metadata"
)

func suggestOne(t *testing.T, source, tag string, v metadata.Value, targets []string) []Suggestion {
	t.Helper()
	raw := metadata.NewRaw()
	raw.Put(metadata.TagRef{Source: source, Tag: tag}, v)
	return Suggest(raw, targets)
}

func bestFor(suggestions []Suggestion, target string) (Suggestion, bool) {
	for _, s := range suggestions {
		if s.TargetField == target {
			return s, true
		}
	}
	return Suggestion{}, false
}

func TestSuggestExactMatch(t *testing.T) {
	got := suggestOne(t, "tiffdir", "ImageWidth", metadata.Int(1000),
		[]string{"General Section.Image Width"})
	if len(got) != 1 {
		t.Fatalf("Expected 1 suggestion, got %v", got)
	}
	if got[0].Score != 1.0 {
		t.Errorf("Expected exact match score 1.0, got %v", got[0].Score)
	}
}

func TestSuggestSubstringMatch(t *testing.T) {
	got := suggestOne(t, "tiffdir", "Width", metadata.Int(1000),
		[]string{"General Section.Image Width"})
	if len(got) != 1 {
		t.Fatalf("Expected 1 suggestion, got %v", got)
	}
	// "width" is a synonym of "imagewidth" and also a substring; substring
	// ranks higher and wins.
	if got[0].Score != 0.8 {
		t.Errorf("Expected substring score 0.8, got %v", got[0].Score)
	}
}

func TestSuggestSynonymMatch(t *testing.T) {
	got := suggestOne(t, "tiffdir", "Make", metadata.String("SemiShop"),
		[]string{"General Section.Manufacturer"})
	if len(got) != 1 {
		t.Fatalf("Expected 1 suggestion, got %v", got)
	}
	if got[0].Score != 0.7 {
		t.Errorf("Expected synonym score 0.7, got %v", got[0].Score)
	}
}

func TestSuggestNumericPenalty(t *testing.T) {
	// A numeric target fed from a non-numeric value drops below the floor.
	got := suggestOne(t, "tiffdir", "ImageWidth", metadata.String("unknown"),
		[]string{"General Section.Image Width"})
	if len(got) != 0 {
		t.Errorf("Expected penalized suggestion to fall below floor, got %v", got)
	}

	// A numeric string keeps its full score.
	got = suggestOne(t, "tiffdir", "ImageWidth", metadata.String("1000"),
		[]string{"General Section.Image Width"})
	if len(got) != 1 || got[0].Score != 1.0 {
		t.Errorf("Expected full score for numeric string, got %v", got)
	}
}

func TestSuggestSkipsCustomSource(t *testing.T) {
	raw := metadata.NewRaw()
	raw.Put(metadata.TagRef{Source: "tiffdir", Tag: "32001"}, metadata.String("x"))
	raw.Put(metadata.TagRef{Source: "custom", Tag: "32001"}, metadata.String("x"))

	for _, s := range Suggest(raw, []string{"Tool Specific.Tool ID"}) {
		if s.Source == metadata.SourceCustom {
			t.Errorf("Expected custom source to be skipped, got %v", s)
		}
	}
}

func TestSuggestOrdering(t *testing.T) {
	raw := metadata.NewRaw()
	raw.Put(metadata.TagRef{Source: "tiffdir", Tag: "Make"}, metadata.String("SemiShop"))
	raw.Put(metadata.TagRef{Source: "imaging", Tag: "Width"}, metadata.Int(1000))
	raw.Put(metadata.TagRef{Source: "tiffdir", Tag: "ImageWidth"}, metadata.Int(1000))

	targets := []string{"General Section.Image Width", "General Section.Manufacturer"}
	got := Suggest(raw, targets)
	if len(got) < 3 {
		t.Fatalf("Expected at least 3 suggestions, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("Expected descending scores, got %v before %v", got[i-1], got[i])
		}
	}
	if got[0].Tag != "ImageWidth" || got[0].Score != 1.0 {
		t.Errorf("Expected exact ImageWidth match first, got %+v", got[0])
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Image Width", "imagewidth"},
		{"image_width", "imagewidth"},
		{"ImageWidth", "imagewidth"},
		{"X-Resolution (dpi)", "xresolutiondpi"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := similarity("width", "width"); got != 1.0 {
		t.Errorf("Expected 1.0 for identical, got %v", got)
	}
	if got := similarity("", "width"); got != 0.0 {
		t.Errorf("Expected 0.0 for empty, got %v", got)
	}
	got := similarity("detector", "detectors")
	if got <= 0.8 || got >= 1.0 {
		t.Errorf("Expected near-miss similarity in (0.8, 1.0), got %v", got)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"width", "width", 0},
		{"make", "made", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q): expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}
