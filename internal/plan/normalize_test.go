package plan

import (
	"errors"
	"testing"

	"chalktalk/internal/services"
)

func TestNormalizeDefaultsAndFloors(t *testing.T) {
	doc := Document{Segments: []RawSegment{
		{Narration: "First beat.", Code: "circle = Circle()", Duration: 8.5},
		{Narration: 12.0, Code: nil, Duration: "fast"},
		{Narration: "Third beat.", Duration: 1.0},
	}}

	p, err := Normalize(doc, Bounds{DefaultDuration: 6, MinDuration: 4})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", p.Len())
	}
	if p.Segments[0].Duration != 8.5 {
		t.Fatalf("valid duration altered: %f", p.Segments[0].Duration)
	}
	if p.Segments[1].Narration != "" || p.Segments[1].Code != "" {
		t.Fatalf("invalid string fields not defaulted: %#v", p.Segments[1])
	}
	if p.Segments[1].Duration != 6 {
		t.Fatalf("invalid duration not defaulted: %f", p.Segments[1].Duration)
	}
	if p.Segments[2].Duration != 4 {
		t.Fatalf("duration floor not applied: %f", p.Segments[2].Duration)
	}
	if p.Segments[0].Steps == nil || len(p.Segments[0].Steps) != 0 {
		t.Fatalf("missing steps should normalize to empty list: %#v", p.Segments[0].Steps)
	}
}

func TestNormalizeEmptyPlanFatal(t *testing.T) {
	_, err := Normalize(Document{}, Bounds{})
	if err == nil {
		t.Fatal("expected error for empty segment list")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream marker, got %v", err)
	}
}

func TestCoerceColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"blue", "blue"},
		{" Yellow ", "yellow"},
		{"WHITE", "white"},
		{"green", "blue"},
		{"teal", "blue"},
		{"red", "yellow"},
		{"orange", "yellow"},
		{"grey", "white"},
		{"#ff00ff", "white"},
		{"", "white"},
	}
	for _, tc := range cases {
		if got := CoerceColor(tc.in); got != tc.want {
			t.Fatalf("CoerceColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeStepColors(t *testing.T) {
	doc := Document{Segments: []RawSegment{{
		Narration: "Steps.",
		Steps: []RawStep{
			{Kind: "write", Text: "x = 2", Color: "crimson"},
			{Kind: "draw", Text: "axes", Color: "blue"},
		},
	}}}
	p, err := Normalize(doc, Bounds{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	steps := p.Segments[0].Steps
	if steps[0].Color != "white" {
		t.Fatalf("out-of-palette color not coerced: %q", steps[0].Color)
	}
	if steps[1].Color != "blue" {
		t.Fatalf("in-palette color altered: %q", steps[1].Color)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one two   three "); got != 3 {
		t.Fatalf("WordCount = %d", got)
	}
	if got := WordCount(""); got != 0 {
		t.Fatalf("WordCount empty = %d", got)
	}
}
