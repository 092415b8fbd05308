package repository

import (
	"context"
	"sync"

	"go-omr-grader/pkg/models"
)

// MemoryResultRepository keeps grading results in memory. Good enough for
// single-instance deployments; results vanish on restart.
type MemoryResultRepository struct {
	mu      sync.RWMutex
	results map[string]*models.SheetResult
	batches map[string]*models.BatchResult
}

// NewMemoryResultRepository creates an empty in-memory result store
func NewMemoryResultRepository() ResultRepository {
	return &MemoryResultRepository{
		results: make(map[string]*models.SheetResult),
		batches: make(map[string]*models.BatchResult),
	}
}

// SaveResult stores a processed sheet result under an identifier
func (r *MemoryResultRepository) SaveResult(ctx context.Context, id string, result *models.SheetResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[id] = result
	return nil
}

// GetResult retrieves a stored sheet result
func (r *MemoryResultRepository) GetResult(ctx context.Context, id string) (*models.SheetResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return result, nil
}

// SaveBatch stores a batch result under its session identifier
func (r *MemoryResultRepository) SaveBatch(ctx context.Context, batch *models.BatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.SessionID] = batch
	return nil
}

// GetBatch retrieves a stored batch result
func (r *MemoryResultRepository) GetBatch(ctx context.Context, sessionID string) (*models.BatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	batch, ok := r.batches[sessionID]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}
