package planner

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert teacher who writes short narrated animation plans for the manim rendering engine. Respond with JSON only.`

func (c *Client) userPrompt(problem, personalization string) string {
	minSegments := c.cfg.MinSegments
	if minSegments <= 0 {
		minSegments = 3
	}
	maxSegments := c.cfg.MaxSegments
	if maxSegments <= 0 {
		maxSegments = 7
	}
	minWords := c.cfg.MinWords
	if minWords <= 0 {
		minWords = 12
	}
	maxWords := c.cfg.MaxWords
	if maxWords <= 0 {
		maxWords = 40
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Create a plan for a short explanatory video about the following problem:

%s

`, problem)

	if trimmed := strings.TrimSpace(personalization); trimmed != "" {
		fmt.Fprintf(&b, `Context about the viewer (adapt tone and examples, do not mention it directly):
%s

`, trimmed)
	}

	fmt.Fprintf(&b, `Respond with a single JSON object in exactly this shape:

{"segments": [{"narration": "...", "code": "...", "duration": 6, "steps": []}]}

Rules:
- Produce between %d and %d segments.
- Each narration is one natural spoken sentence of %d to %d words.
- Each code value is a fragment of manim construct-body Python animating that one beat. Do not define classes or imports; write statements only.
- Variables declared in an earlier segment may be referenced in later segments, so keep them consistent and in order.
- duration is the suggested seconds the beat stays on screen.
- Only use the colors blue, yellow, and white.
- Return ONLY the JSON object, with no code fences and no commentary.`,
		minSegments, maxSegments, minWords, maxWords)
	return b.String()
}
