package repository

import (
	"context"
	"image"

	"go-omr-grader/internal/storage"
	"go-omr-grader/pkg/validation"
)

// StorageSheetRepository implements SheetRepository over an ImageFetcher
type StorageSheetRepository struct {
	fetcher   storage.ImageFetcher
	validator *validation.URLValidator
}

// NewSheetRepository creates a sheet repository backed by the given fetcher.
// A nil validator falls back to the remote http(s) rules; the local backend
// passes a validator that also accepts file URLs and bare paths.
func NewSheetRepository(fetcher storage.ImageFetcher, validator *validation.URLValidator) SheetRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &StorageSheetRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

// FetchImage retrieves a scanned sheet from a URL
func (r *StorageSheetRepository) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if err := r.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *StorageSheetRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	return r.validator.ValidateImageURL(imageURL)
}
