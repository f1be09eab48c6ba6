package scenescript

import (
	"fmt"
	"strings"

	"chalktalk/internal/plan"
)

const bodyIndent = "        " // two levels inside class + def

var manimColors = map[string]string{
	"blue":   "BLUE",
	"yellow": "YELLOW",
	"white":  "WHITE",
}

// Assemble emits a renderer-ready scene script from the ordered segments and
// the parallel array of measured narration durations. Each segment's code is
// emitted verbatim at construct-body nesting, followed by a pause whose
// length matches the measured narration to two decimal places. Segment order
// is preserved exactly: later segments may reference variables bound earlier.
//
// Assembly is pure text and fully deterministic given its inputs.
func Assemble(p plan.ScenePlan, durations []float64, sceneName string) (string, error) {
	if p.Len() == 0 {
		return "", fmt.Errorf("scene plan has no segments")
	}
	if len(durations) != p.Len() {
		return "", fmt.Errorf("duration count %d does not match segment count %d", len(durations), p.Len())
	}
	sceneName = strings.TrimSpace(sceneName)
	if sceneName == "" {
		sceneName = "Lesson"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from manim import *\n\n\nclass %s(Scene):\n    def construct(self):\n", sceneName)

	for i, segment := range p.Segments {
		code := strings.TrimSpace(segment.Code)
		if code == "" {
			code = stepsToCode(i, segment.Steps)
		}
		for _, line := range strings.Split(code, "\n") {
			trimmed := strings.TrimRight(line, " \t")
			if trimmed == "" {
				b.WriteByte('\n')
				continue
			}
			b.WriteString(bodyIndent)
			b.WriteString(trimmed)
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%sself.wait(%.2f)\n", bodyIndent, durations[i])
	}

	return b.String(), nil
}

// stepsToCode renders structured steps into construct-body statements for
// segments that carry steps instead of literal code.
func stepsToCode(segmentIndex int, steps []plan.Step) string {
	if len(steps) == 0 {
		return "self.wait(0.1)"
	}
	lines := make([]string, 0, len(steps)*2)
	for j, step := range steps {
		name := fmt.Sprintf("item_%d_%d", segmentIndex, j)
		color := manimColors[step.Color]
		if color == "" {
			color = "WHITE"
		}
		text := escapePyString(step.Text)
		switch strings.ToLower(step.Kind) {
		case "formula", "equation":
			lines = append(lines, fmt.Sprintf("%s = MathTex(r\"%s\", color=%s)", name, text, color))
		default:
			lines = append(lines, fmt.Sprintf("%s = Text(\"%s\", color=%s)", name, text, color))
		}
		lines = append(lines, fmt.Sprintf("self.play(Write(%s))", name))
	}
	return strings.Join(lines, "\n")
}

func escapePyString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
