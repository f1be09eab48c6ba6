// Package planner calls the language-model planning service and converts its
// JSON-shaped output into a normalized scene plan, repairing the common
// formatting defects models introduce (code fences, unquoted bare words).
package planner
