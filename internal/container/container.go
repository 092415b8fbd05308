// Package container wires the application dependency graph.
package container

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"go-omr-grader/internal/config"
	"go-omr-grader/internal/factory"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/observer"
	"go-omr-grader/internal/repository"
	"go-omr-grader/internal/service"
	"go-omr-grader/internal/storage"
	"go-omr-grader/internal/transport"
	"go-omr-grader/pkg/answerkey"
	"go-omr-grader/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	sheetFetcher    storage.ImageFetcher
	sheetRepository repository.SheetRepository
	resultStore     repository.ResultRepository
	answerKeys      answerkey.KeySet
	gradingService  service.GradingService
	events          observer.Subject
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	factories := factory.NewComponentFactory(cfg)

	sheetFetcher, err := factories.StorageFactory.CreateStorage(factory.StorageType(cfg.StorageBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	keys, err := loadAnswerKeys(cfg.AnswerKeysPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer keys: %w", err)
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(observer.NewMetricsObserver())

	urlValidator := validation.NewURLValidator()
	if cfg.StorageBackend == string(factory.LocalStorage) {
		urlValidator = validation.NewLocalURLValidator()
	}

	sheetRepository := repository.NewSheetRepository(sheetFetcher, urlValidator)
	resultStore := repository.NewMemoryResultRepository()
	gradingService := service.NewGradingService(
		cfg, sheetRepository, resultStore, factories.TemplateFactory, keys, events)
	handler := transport.NewHandler(gradingService, cfg)

	return &Container{
		config:          cfg,
		sheetFetcher:    sheetFetcher,
		sheetRepository: sheetRepository,
		resultStore:     resultStore,
		answerKeys:      keys,
		gradingService:  gradingService,
		events:          events,
		handler:         handler,
	}, nil
}

// loadAnswerKeys reads the configured key file. A missing file falls back
// to demo keys so the service can start in development environments.
func loadAnswerKeys(path string) (answerkey.KeySet, error) {
	keys, err := answerkey.LoadFile(path)
	if err == nil {
		return keys, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		logger.WithField("path", path).Warn("Answer key file not found, using demo keys")
		return demoKeys(), nil
	}
	return nil, err
}

// demoKeys mirrors the demo fallback: set A answers all "a", set B all "b".
func demoKeys() answerkey.KeySet {
	all := func(answer string) []string {
		raw := make([]string, 100)
		for i := range raw {
			raw[i] = answer
		}
		return raw
	}
	return answerkey.KeySet{
		"setA": {Set: "setA", RawAnswers: all("a")},
		"setB": {Set: "setB", RawAnswers: all("b")},
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// GradingService returns the grading service
func (c *Container) GradingService() service.GradingService {
	return c.gradingService
}
