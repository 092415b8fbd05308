package repository

import (
	"context"
	"errors"
	"testing"

	"go-omr-grader/pkg/models"
)

func TestMemoryResultRepository_SaveAndGet(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()

	result := &models.SheetResult{Status: models.StatusSuccess, DetectedSet: "A"}
	if err := repo.SaveResult(ctx, "sheet-1", result); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	got, err := repo.GetResult(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if got.DetectedSet != "A" {
		t.Errorf("detected set = %q, want A", got.DetectedSet)
	}
}

func TestMemoryResultRepository_MissingResult(t *testing.T) {
	repo := NewMemoryResultRepository()

	_, err := repo.GetResult(context.Background(), "nope")
	if !errors.Is(err, ErrResultNotFound) {
		t.Errorf("err = %v, want ErrResultNotFound", err)
	}
}

func TestMemoryResultRepository_Batches(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()

	batch := &models.BatchResult{
		SessionID: "batch-42",
		Results:   []models.SheetResult{{Status: models.StatusSuccess}},
	}
	if err := repo.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	got, err := repo.GetBatch(ctx, "batch-42")
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if len(got.Results) != 1 {
		t.Errorf("got %d results, want 1", len(got.Results))
	}

	if _, err := repo.GetBatch(ctx, "other"); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v, want ErrBatchNotFound", err)
	}
}
