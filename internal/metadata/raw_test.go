package metadata

import (
	"reflect"
	"testing"
)

func TestRawPutFirstWins(t *testing.T) {
	raw := NewRaw()
	ref := TagRef{Source: "tiffdir", Tag: "Software"}

	if !raw.Put(ref, String("first")) {
		t.Fatal("Expected first Put to store")
	}
	if raw.Put(ref, String("second")) {
		t.Error("Expected second Put to be rejected")
	}
	v, _ := raw.Lookup(ref)
	if v.Text() != "first" {
		t.Errorf("Expected first value to survive, got %q", v.Text())
	}

	raw.Replace(ref, String("third"))
	v, _ = raw.Lookup(ref)
	if v.Text() != "third" {
		t.Errorf("Expected Replace to overwrite, got %q", v.Text())
	}
	if raw.Len() != 1 {
		t.Errorf("Expected Len=1, got %d", raw.Len())
	}
}

func TestRawRefsKeepInsertionOrder(t *testing.T) {
	raw := NewRaw()
	refs := []TagRef{
		{Source: "file", Tag: "Name"},
		{Source: "tiffdir", Tag: "Software"},
		{Source: "tiffdir", Tag: "Make"},
	}
	for _, ref := range refs {
		raw.Put(ref, String("x"))
	}
	if got := raw.Refs(); !reflect.DeepEqual(got, refs) {
		t.Errorf("Expected insertion order %v, got %v", refs, got)
	}
}

func TestRawCustomRefs(t *testing.T) {
	raw := NewRaw()
	raw.Put(TagRef{Source: "tiffdir", Tag: "32001"}, Int(1))
	raw.Put(TagRef{Source: "custom", Tag: "32005"}, Int(5))
	raw.Put(TagRef{Source: "custom", Tag: "32001"}, Int(1))

	got := raw.CustomRefs()
	want := []TagRef{
		{Source: "custom", Tag: "32001"},
		{Source: "custom", Tag: "32005"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestIsCustomTagID(t *testing.T) {
	tests := []struct {
		id   int
		want bool
	}{
		{31999, false},
		{32000, true},
		{32500, true},
		{32999, true},
		{33000, false},
	}
	for _, tt := range tests {
		if got := IsCustomTagID(tt.id); got != tt.want {
			t.Errorf("IsCustomTagID(%d): expected %v, got %v", tt.id, tt.want, got)
		}
	}
}

func TestRawTagsBySource(t *testing.T) {
	raw := NewRaw()
	raw.Put(TagRef{Source: "tiffdir", Tag: "Software"}, String("x"))
	raw.Put(TagRef{Source: "tiffdir", Tag: "Make"}, String("x"))
	raw.Put(TagRef{Source: "file", Tag: "Name"}, String("x"))

	got := raw.TagsBySource()
	if !reflect.DeepEqual(got["tiffdir"], []string{"Make", "Software"}) {
		t.Errorf("Expected sorted tiffdir tags, got %v", got["tiffdir"])
	}
	if !reflect.DeepEqual(raw.Sources(), []string{"file", "tiffdir"}) {
		t.Errorf("Expected sorted sources, got %v", raw.Sources())
	}
}
