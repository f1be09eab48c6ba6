package plan

import (
	"strings"

	"chalktalk/internal/services"
)

// Document is the parse target for the planning service's JSON response.
// Field types are deliberately loose: the model occasionally emits numbers
// where strings belong and vice versa, and normalization absorbs that.
type Document struct {
	Segments []RawSegment `json:"segments"`
}

// RawSegment mirrors one segment object as the planning service emits it.
type RawSegment struct {
	Narration any       `json:"narration"`
	Code      any       `json:"code"`
	Duration  any       `json:"duration"`
	Steps     []RawStep `json:"steps"`
}

// RawStep mirrors one step object before palette coercion.
type RawStep struct {
	Kind  any `json:"kind"`
	Text  any `json:"text"`
	Color any `json:"color"`
}

// Bounds carries the normalization policy values.
type Bounds struct {
	DefaultDuration float64
	MinDuration     float64
}

// Palette is the fixed set of colors the renderer theme supports. Anything
// outside it is coerced via colorAliases rather than rejected.
var Palette = []string{"blue", "yellow", "white"}

// colorAliases maps out-of-palette colors to their nearest in-palette value.
// The table is a policy decision: cool tones collapse to blue, warm tones to
// yellow, everything else to white.
var colorAliases = map[string]string{
	"green":   "blue",
	"teal":    "blue",
	"cyan":    "blue",
	"purple":  "blue",
	"navy":    "blue",
	"red":     "yellow",
	"orange":  "yellow",
	"gold":    "yellow",
	"pink":    "yellow",
	"magenta": "yellow",
	"black":   "white",
	"gray":    "white",
	"grey":    "white",
}

// Normalize converts raw planner output into a ScenePlan, applying the
// defaulting and coercion rules: invalid narration becomes empty, invalid or
// missing durations take the default with a minimum floor, missing step lists
// become empty, and colors are coerced into the palette. An empty segment
// list after normalization is a fatal planning error.
func Normalize(doc Document, bounds Bounds) (ScenePlan, error) {
	if bounds.DefaultDuration <= 0 {
		bounds.DefaultDuration = 6
	}
	if bounds.MinDuration <= 0 {
		bounds.MinDuration = 4
	}

	segments := make([]Segment, 0, len(doc.Segments))
	for _, raw := range doc.Segments {
		segments = append(segments, Segment{
			Narration: coerceString(raw.Narration),
			Code:      coerceString(raw.Code),
			Duration:  coerceDuration(raw.Duration, bounds),
			Steps:     normalizeSteps(raw.Steps),
		})
	}

	if len(segments) == 0 {
		return ScenePlan{}, services.Wrap(services.ErrUpstream, "plan", "normalize", "no segments generated", nil)
	}
	return ScenePlan{Segments: segments}, nil
}

func normalizeSteps(raw []RawStep) []Step {
	if len(raw) == 0 {
		return []Step{}
	}
	steps := make([]Step, 0, len(raw))
	for _, s := range raw {
		steps = append(steps, Step{
			Kind:  coerceString(s.Kind),
			Text:  coerceString(s.Text),
			Color: CoerceColor(coerceString(s.Color)),
		})
	}
	return steps
}

// CoerceColor maps any color value onto the fixed palette deterministically.
func CoerceColor(color string) string {
	normalized := strings.ToLower(strings.TrimSpace(color))
	for _, known := range Palette {
		if normalized == known {
			return known
		}
	}
	if mapped, ok := colorAliases[normalized]; ok {
		return mapped
	}
	return "white"
}

func coerceString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func coerceDuration(v any, bounds Bounds) float64 {
	d, ok := v.(float64)
	if !ok || d <= 0 {
		d = bounds.DefaultDuration
	}
	if d < bounds.MinDuration {
		d = bounds.MinDuration
	}
	return d
}
