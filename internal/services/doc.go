// Package services defines the shared error taxonomy and context annotations
// used by the pipeline stages and the outbound service clients.
package services
