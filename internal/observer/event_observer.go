package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// GradingEvent represents a sheet grading event
type GradingEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageURL       string                 `json:"image_url"`
	DetectedSet    string                 `json:"detected_set,omitempty"`
	Score          float64                `json:"score,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of grading event
type EventType string

const (
	// GradingStarted when sheet processing begins
	GradingStarted EventType = "grading_started"
	// GradingCompleted when a sheet is scored successfully
	GradingCompleted EventType = "grading_completed"
	// GradingDegraded when a sheet is scored with warnings
	GradingDegraded EventType = "grading_degraded"
	// GradingFailed when sheet processing fails
	GradingFailed EventType = "grading_failed"
	// SheetFetched when the sheet image is successfully fetched
	SheetFetched EventType = "sheet_fetched"
	// SheetFetchFailed when the sheet image fetch fails
	SheetFetchFailed EventType = "sheet_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event GradingEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event GradingEvent)
}

// LoggingObserver logs grading events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles grading events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event GradingEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"image_url":       event.ImageURL,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.DetectedSet != "" {
		fields["detected_set"] = event.DetectedSet
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case GradingStarted:
		o.logger.WithFields(fields).Info("Sheet grading started")
	case GradingCompleted:
		o.logger.WithFields(fields).Info("Sheet grading completed")
	case GradingDegraded:
		o.logger.WithFields(fields).Warn("Sheet graded with warnings")
	case GradingFailed:
		o.logger.WithFields(fields).Error("Sheet grading failed")
	case SheetFetched:
		o.logger.WithFields(fields).Debug("Sheet image fetched successfully")
	case SheetFetchFailed:
		o.logger.WithFields(fields).Error("Sheet image fetch failed")
	default:
		o.logger.WithFields(fields).Info("Grading event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects metrics from grading events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalSheets         int64
	completedSheets     int64
	degradedSheets      int64
	failedSheets        int64
	scoreSum            float64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() Observer {
	return &MetricsObserver{}
}

// OnEvent handles grading events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event GradingEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case GradingStarted:
		o.totalSheets++
	case GradingCompleted:
		o.completedSheets++
		o.scoreSum += event.Score
		o.totalProcessingTime += event.ProcessingTime
	case GradingDegraded:
		o.degradedSheets++
		o.scoreSum += event.Score
		o.totalProcessingTime += event.ProcessingTime
	case GradingFailed:
		o.failedSheets++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	scored := o.completedSheets + o.degradedSheets
	avgProcessingTime := time.Duration(0)
	avgScore := 0.0
	if scored > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(scored)
		avgScore = o.scoreSum / float64(scored)
	}

	return map[string]interface{}{
		"total_sheets":          o.totalSheets,
		"completed_sheets":      o.completedSheets,
		"degraded_sheets":       o.degradedSheets,
		"failed_sheets":         o.failedSheets,
		"average_score":         avgScore,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event GradingEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
