package repository

import (
	"context"
	"image"

	"go-omr-grader/pkg/models"
)

// SheetRepository defines the interface for sheet image access operations
type SheetRepository interface {
	// FetchImage retrieves a scanned sheet from a URL
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// ResultRepository defines the interface for grading result operations
type ResultRepository interface {
	// SaveResult stores a processed sheet result under an identifier
	SaveResult(ctx context.Context, id string, result *models.SheetResult) error

	// GetResult retrieves a stored sheet result
	GetResult(ctx context.Context, id string) (*models.SheetResult, error)

	// SaveBatch stores a batch result under its session identifier
	SaveBatch(ctx context.Context, batch *models.BatchResult) error

	// GetBatch retrieves a stored batch result
	GetBatch(ctx context.Context, sessionID string) (*models.BatchResult, error)
}
