package plan

import "strings"

// Step is one structured visual instruction inside a segment.
type Step struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Segment is one narrated beat of the generated video: spoken text paired
// with renderer instructions scoped to that beat. Segments are immutable once
// the planner has produced them.
type Segment struct {
	Narration string
	Code      string
	Duration  float64
	Steps     []Step
}

// ScenePlan is the full ordered list of segments describing one video.
// Ordering is load-bearing: code in later segments may reference variables
// declared in earlier ones.
type ScenePlan struct {
	Segments []Segment
}

// Len returns the number of segments in the plan.
func (p ScenePlan) Len() int {
	return len(p.Segments)
}

// WordCount counts whitespace-separated words in a narration string.
func WordCount(narration string) int {
	return len(strings.Fields(narration))
}
