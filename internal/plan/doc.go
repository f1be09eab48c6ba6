// Package plan defines the scene plan data model and the normalization rules
// applied to raw planning-service output before it enters the pipeline.
package plan
