package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/errors"
	"go-omr-grader/internal/logger"
	"go-omr-grader/pkg/answerkey"
	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/template"
)

// SheetJob is one unit of batch work.
type SheetJob struct {
	ID    string
	Image image.Image
}

// BatchProcessor fans sheets out over a worker pool while keeping results
// in submission order. One failing sheet never aborts the batch.
type BatchProcessor struct {
	processor *Processor
	workers   int
}

// NewBatchProcessor validates the options and builds a batch processor.
// Configuration problems are fatal here, before any sheet is touched.
func NewBatchProcessor(opts Options) (*BatchProcessor, error) {
	if opts.FillThreshold <= 0 || opts.FillThreshold >= 1 {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("fill threshold must be in (0,1), got %v", opts.FillThreshold), nil)
	}
	if opts.QualityThreshold < 0 || opts.QualityThreshold > 1 {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("quality threshold must be in [0,1], got %v", opts.QualityThreshold), nil)
	}
	if opts.ConfidenceThreshold < 0 || opts.ConfidenceThreshold > 1 {
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("confidence threshold must be in [0,1], got %v", opts.ConfidenceThreshold), nil)
	}

	workers := opts.MaxWorkers
	if !opts.UseWorkerPool {
		workers = 1
	}
	if workers <= 0 {
		workers = 4
	}

	return &BatchProcessor{
		processor: NewProcessor(opts),
		workers:   workers,
	}, nil
}

// Process runs every job through the pipeline. Sheets that fail or get
// cancelled are recorded as ERROR results in their slot.
func (b *BatchProcessor) Process(ctx context.Context, jobs []SheetJob, tpl *template.Template, keys answerkey.KeySet) *models.BatchResult {
	start := time.Now()
	sessionID := fmt.Sprintf("batch-%d", start.UnixNano())

	logger.WithFields(logrus.Fields{
		"session": sessionID,
		"sheets":  len(jobs),
		"workers": b.workers,
	}).Info("Batch started")

	results := make([]models.SheetResult, len(jobs))

	pool := NewWorkerPool(b.workers)
	pool.Start()
	defer pool.Close()

	var mu sync.Mutex
	for i, job := range jobs {
		i, job := i, job
		pool.Submit(func() {
			var r *models.SheetResult
			select {
			case <-ctx.Done():
				r = &models.SheetResult{
					Status:       models.StatusError,
					ErrorMessage: ctx.Err().Error(),
					Timestamp:    time.Now(),
				}
			default:
				r = b.processor.ProcessSheet(job.Image, tpl, keys)
			}
			mu.Lock()
			results[i] = *r
			mu.Unlock()
			logger.WithSheet(job.ID).WithField("status", r.Status).Debug("Batch sheet processed")
		})
	}
	pool.Wait()

	stats := summarize(results, time.Since(start))
	logger.WithFields(logrus.Fields{
		"session":     sessionID,
		"succeeded":   stats.Succeeded,
		"warned":      stats.Warned,
		"failed":      stats.Failed,
		"elapsed_sec": stats.TotalTimeSec,
	}).Info("Batch finished")

	return &models.BatchResult{
		SessionID:  sessionID,
		Results:    results,
		Statistics: stats,
	}
}

func summarize(results []models.SheetResult, elapsed time.Duration) models.BatchStatistics {
	stats := models.BatchStatistics{
		TotalSheets:  len(results),
		TotalTimeSec: elapsed.Seconds(),
	}
	if len(results) == 0 {
		return stats
	}

	var qualitySum float64
	for _, r := range results {
		switch r.Status {
		case models.StatusSuccess:
			stats.Succeeded++
		case models.StatusWarning:
			stats.Warned++
		default:
			stats.Failed++
		}
		qualitySum += r.Quality.OverallQuality
	}

	processed := stats.Succeeded + stats.Warned
	stats.SuccessRate = float64(processed) / float64(len(results)) * 100
	stats.AverageTimeSec = stats.TotalTimeSec / float64(len(results))
	stats.AverageQualityScore = qualitySum / float64(len(results))
	return stats
}
