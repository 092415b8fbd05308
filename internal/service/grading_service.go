// Package service orchestrates sheet fetching, processing and result
// storage behind a single grading interface.
package service

import (
	"context"
	"fmt"
	"time"

	"go-omr-grader/internal/config"
	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/factory"
	"go-omr-grader/internal/observer"
	"go-omr-grader/internal/pipeline"
	"go-omr-grader/internal/repository"
	"go-omr-grader/pkg/answerkey"
	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/validation"
)

// GradingService defines the interface for sheet grading operations
type GradingService interface {
	// GradeSheet fetches, processes and scores a single sheet
	GradeSheet(ctx context.Context, request models.GradeRequest) (*models.GradeResponse, error)

	// GradeBatch processes several sheets as one session
	GradeBatch(ctx context.Context, request models.BatchGradeRequest) (*models.BatchResult, error)

	// GetResult retrieves a previously stored sheet result
	GetResult(ctx context.Context, id string) (*models.SheetResult, error)

	// GetBatch retrieves a previously stored batch session
	GetBatch(ctx context.Context, sessionID string) (*models.BatchResult, error)

	// ValidateImageURL validates a sheet image URL
	ValidateImageURL(imageURL string) error
}

// gradingService implements GradingService
type gradingService struct {
	cfg              *config.Config
	sheets           repository.SheetRepository
	results          repository.ResultRepository
	templates        factory.TemplateFactory
	keys             answerkey.KeySet
	qualityValidator *validation.QualityValidator
	events           observer.Subject
}

// NewGradingService creates a new grading service
func NewGradingService(
	cfg *config.Config,
	sheets repository.SheetRepository,
	results repository.ResultRepository,
	templates factory.TemplateFactory,
	keys answerkey.KeySet,
	events observer.Subject,
) GradingService {
	return &gradingService{
		cfg:              cfg,
		sheets:           sheets,
		results:          results,
		templates:        templates,
		keys:             keys,
		qualityValidator: validation.NewQualityValidator(),
		events:           events,
	}
}

// GradeSheet fetches, processes and scores a single sheet
func (s *gradingService) GradeSheet(ctx context.Context, request models.GradeRequest) (*models.GradeResponse, error) {
	if err := s.ValidateImageURL(request.ImageURL); err != nil {
		return nil, apperrors.NewValidationError("invalid sheet image URL", err)
	}

	s.publish(ctx, observer.GradingEvent{
		EventType: observer.GradingStarted,
		Timestamp: time.Now(),
		ImageURL:  request.ImageURL,
	})

	img, err := s.sheets.FetchImage(ctx, request.ImageURL)
	if err != nil {
		s.publish(ctx, observer.GradingEvent{
			EventType:    observer.SheetFetchFailed,
			Timestamp:    time.Now(),
			ImageURL:     request.ImageURL,
			ErrorMessage: err.Error(),
		})
		return nil, apperrors.NewNetworkError("failed to fetch sheet image", err)
	}
	s.publish(ctx, observer.GradingEvent{
		EventType: observer.SheetFetched,
		Timestamp: time.Now(),
		ImageURL:  request.ImageURL,
		Success:   true,
	})

	tpl, err := s.templates.CreateTemplate(request.Template)
	if err != nil {
		return nil, apperrors.NewInputError("unknown sheet template", err)
	}

	processor := pipeline.NewProcessor(s.buildOptions(request.Set, request.AutoEnhance))
	result := processor.ProcessSheet(img, tpl, s.keys)

	// Scan-level quality gate on top of the pipeline's own warnings.
	bounds := img.Bounds()
	issues := s.qualityValidator.ValidateSheetQuality(result.Quality, bounds.Dx(), bounds.Dy())
	if s.qualityValidator.HasCriticalIssues(issues) && result.Status != models.StatusError {
		result.Status = models.StatusError
		result.ErrorMessage = issues[0].Message
	} else if len(issues) > 0 {
		result.Warnings = append(result.Warnings, s.qualityValidator.ConvertIssuesToMessages(issues)...)
		if result.Status == models.StatusSuccess {
			result.Status = models.StatusWarning
		}
	}

	id := fmt.Sprintf("sheet-%d", time.Now().UnixNano())
	if err := s.results.SaveResult(ctx, id, result); err != nil {
		return nil, apperrors.NewInternalError("failed to store result", err)
	}

	s.publish(ctx, s.completionEvent(request.ImageURL, result))

	return &models.GradeResponse{ResultID: id, Result: result}, nil
}

// GradeBatch processes several sheets as one session
func (s *gradingService) GradeBatch(ctx context.Context, request models.BatchGradeRequest) (*models.BatchResult, error) {
	if len(request.ImageURLs) == 0 {
		return nil, apperrors.NewValidationError("image_urls must not be empty", nil)
	}
	for _, u := range request.ImageURLs {
		if err := s.ValidateImageURL(u); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sheet image URL %q", u), err)
		}
	}

	tpl, err := s.templates.CreateTemplate(request.Template)
	if err != nil {
		return nil, apperrors.NewInputError("unknown sheet template", err)
	}

	batchProcessor, err := pipeline.NewBatchProcessor(s.buildOptions(request.Set, request.AutoEnhance))
	if err != nil {
		return nil, err
	}

	// Fetch failures become ERROR slots; the rest of the batch proceeds.
	jobs := make([]pipeline.SheetJob, len(request.ImageURLs))
	for i, u := range request.ImageURLs {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ImageFetchTimeout)
		img, ferr := s.sheets.FetchImage(fetchCtx, u)
		cancel()
		if ferr != nil {
			s.publish(ctx, observer.GradingEvent{
				EventType:    observer.SheetFetchFailed,
				Timestamp:    time.Now(),
				ImageURL:     u,
				ErrorMessage: ferr.Error(),
			})
		}
		jobs[i] = pipeline.SheetJob{ID: u, Image: img}
	}

	batch := batchProcessor.Process(ctx, jobs, tpl, s.keys)
	if err := s.results.SaveBatch(ctx, batch); err != nil {
		return nil, apperrors.NewInternalError("failed to store batch result", err)
	}
	return batch, nil
}

// GetResult retrieves a previously stored sheet result
func (s *gradingService) GetResult(ctx context.Context, id string) (*models.SheetResult, error) {
	result, err := s.results.GetResult(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("result not found", err)
	}
	return result, nil
}

// GetBatch retrieves a previously stored batch session
func (s *gradingService) GetBatch(ctx context.Context, sessionID string) (*models.BatchResult, error) {
	batch, err := s.results.GetBatch(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("batch session not found", err)
	}
	return batch, nil
}

// ValidateImageURL validates a sheet image URL
func (s *gradingService) ValidateImageURL(imageURL string) error {
	return s.sheets.ValidateImageURL(imageURL)
}

// buildOptions derives pipeline options from the configuration with
// per-request overrides.
func (s *gradingService) buildOptions(set string, autoEnhance *bool) pipeline.Options {
	opts := pipeline.DefaultOptions().
		WithThresholds(s.cfg.FillThreshold, s.cfg.QualityThreshold, s.cfg.ConfidenceThreshold).
		WithWorkers(s.cfg.WorkerCount)
	opts.AutoEnhance = s.cfg.AutoEnhance
	if autoEnhance != nil {
		opts.AutoEnhance = *autoEnhance
	}
	if set != "" {
		opts = opts.WithForcedSet(set)
	}
	return opts
}

func (s *gradingService) completionEvent(imageURL string, result *models.SheetResult) observer.GradingEvent {
	event := observer.GradingEvent{
		Timestamp:      time.Now(),
		ImageURL:       imageURL,
		DetectedSet:    result.DetectedSet,
		ProcessingTime: time.Duration(result.ProcessingTimeSec * float64(time.Second)),
		Success:        result.Status != models.StatusError,
		ErrorMessage:   result.ErrorMessage,
	}
	if result.Evaluation != nil {
		event.Score = result.Evaluation.TotalScore
	}
	switch result.Status {
	case models.StatusSuccess:
		event.EventType = observer.GradingCompleted
	case models.StatusWarning:
		event.EventType = observer.GradingDegraded
	default:
		event.EventType = observer.GradingFailed
	}
	return event
}

func (s *gradingService) publish(ctx context.Context, event observer.GradingEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
