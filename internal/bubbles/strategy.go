package bubbles

import (
	"image"

	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/template"
)

// DetectionStrategy defines the interface for bubble detection strategies
type DetectionStrategy interface {
	Detect(gray *image.Gray) []models.BubbleDetection
	GetStrategyName() string
}

// TemplateStrategy detects bubbles at known template coordinates
type TemplateStrategy struct {
	analyzer *Analyzer
	tpl      *template.Template
}

// NewTemplateStrategy creates a template-driven detection strategy
func NewTemplateStrategy(analyzer *Analyzer, tpl *template.Template) DetectionStrategy {
	return &TemplateStrategy{
		analyzer: analyzer,
		tpl:      tpl,
	}
}

// Detect performs template-coordinate detection
func (s *TemplateStrategy) Detect(gray *image.Gray) []models.BubbleDetection {
	return s.analyzer.DetectWithTemplate(gray, s.tpl)
}

// GetStrategyName returns the strategy name
func (s *TemplateStrategy) GetStrategyName() string {
	return "template_detection"
}

// GridStrategy detects bubbles with the fixed-grid heuristic
type GridStrategy struct {
	detector *GridDetector
}

// NewGridStrategy creates a grid-heuristic detection strategy
func NewGridStrategy(detector *GridDetector) DetectionStrategy {
	return &GridStrategy{
		detector: detector,
	}
}

// Detect performs grid-heuristic detection
func (s *GridStrategy) Detect(gray *image.Gray) []models.BubbleDetection {
	return s.detector.Detect(gray)
}

// GetStrategyName returns the strategy name
func (s *GridStrategy) GetStrategyName() string {
	return "grid_detection"
}

// DetectionContext manages the detection strategy
type DetectionContext struct {
	strategy DetectionStrategy
}

// NewDetectionContext creates a new detection context
func NewDetectionContext(strategy DetectionStrategy) *DetectionContext {
	return &DetectionContext{
		strategy: strategy,
	}
}

// SetStrategy changes the detection strategy
func (c *DetectionContext) SetStrategy(strategy DetectionStrategy) {
	c.strategy = strategy
}

// ExecuteDetection performs detection using the current strategy
func (c *DetectionContext) ExecuteDetection(gray *image.Gray) []models.BubbleDetection {
	return c.strategy.Detect(gray)
}

// GetCurrentStrategy returns the current strategy name
func (c *DetectionContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
