// Package scenescript assembles the renderer script from a scene plan and
// the measured narration durations.
package scenescript
