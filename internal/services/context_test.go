package services_test

import (
	"context"
	"testing"

	"datefixer/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.FilePathFromContext(ctx); ok {
		t.Fatal("expected no path on empty context")
	}
	ctx = services.WithFilePath(ctx, "/photos/a.jpg")
	ctx = services.WithWorker(ctx, 3)
	ctx = services.WithRunID(ctx, "run-1")

	if path, ok := services.FilePathFromContext(ctx); !ok || path != "/photos/a.jpg" {
		t.Fatalf("unexpected path %q ok=%v", path, ok)
	}
	if id, ok := services.WorkerFromContext(ctx); !ok || id != 3 {
		t.Fatalf("unexpected worker %d ok=%v", id, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q ok=%v", id, ok)
	}
	if services.WithRunID(ctx, "") != ctx {
		t.Fatal("empty run id should return the same context")
	}
}
