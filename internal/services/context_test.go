package services

import (
	"context"
	"testing"
)

func TestContextRoundTrips(t *testing.T) {
	ctx := context.Background()

	if _, ok := JobIDFromContext(ctx); ok {
		t.Fatal("unexpected job id on empty context")
	}

	ctx = WithJobID(ctx, "job-42")
	ctx = WithStage(ctx, "plan")
	ctx = WithRequestID(ctx, "req-1")

	if id, ok := JobIDFromContext(ctx); !ok || id != "job-42" {
		t.Fatalf("job id: %q %v", id, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "plan" {
		t.Fatalf("stage: %q %v", stage, ok)
	}
	if rid, ok := RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id: %q %v", rid, ok)
	}
}

func TestEmptyValuesIgnored(t *testing.T) {
	ctx := WithStage(context.Background(), "")
	if _, ok := StageFromContext(ctx); ok {
		t.Fatal("empty stage should not be stored")
	}
}
