// Package pipeline runs the full sheet processing sequence: quality
// assessment, conditional enhancement, geometry normalization, bubble
// detection and answer evaluation.
package pipeline

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/bubbles"
	"go-omr-grader/internal/enhance"
	"go-omr-grader/internal/evaluate"
	"go-omr-grader/internal/geometry"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/quality"
	"go-omr-grader/pkg/answerkey"
	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/template"
)

// Warning messages surfaced on degraded sheets.
const (
	warnBoundaryNotFound = "Sheet boundary not found - analysis uses raw template coordinates"
	warnLowQuality       = "Overall image quality below threshold"
	warnLowConfidence    = "Bubble detection confidence below threshold"
	warnNoMarks          = "No marked bubbles detected on the sheet"
)

// Processor runs the sheet pipeline. It is stateless per sheet and safe
// for concurrent use.
type Processor struct {
	assessor    *quality.Assessor
	enhancer    *enhance.Enhancer
	normalizer  *geometry.Normalizer
	setDetector *bubbles.SetDetector
	evaluator   *evaluate.Evaluator
	opts        Options
}

// NewProcessor wires the pipeline stages with the given options.
func NewProcessor(opts Options) *Processor {
	assessor := quality.NewAssessor()
	return &Processor{
		assessor:    assessor,
		enhancer:    enhance.NewEnhancer(assessor),
		normalizer:  geometry.NewNormalizer(),
		setDetector: bubbles.NewSetDetector(),
		evaluator:   evaluate.NewEvaluator(nil),
		opts:        opts,
	}
}

// ProcessSheet runs one sheet through the full pipeline. Detection
// problems degrade the result to WARNING rather than failing; only
// unusable inputs produce an ERROR status.
func (p *Processor) ProcessSheet(img image.Image, tpl *template.Template, keys answerkey.KeySet) *models.SheetResult {
	start := time.Now()
	result := &models.SheetResult{
		Status:    models.StatusSuccess,
		Timestamp: start,
	}
	defer func() {
		result.ProcessingTimeSec = time.Since(start).Seconds()
	}()

	if img == nil || tpl == nil {
		result.Status = models.StatusError
		result.ErrorMessage = "image and template are required"
		return result
	}

	// The whole pipeline operates on a single grayscale conversion.
	gray := imgutil.ToGray(img)
	if gray.Bounds().Empty() {
		result.Status = models.StatusError
		result.ErrorMessage = "image is empty"
		return result
	}

	metrics := p.assessor.Assess(gray)
	result.Quality = metrics

	gatingQuality := metrics.OverallQuality
	if p.opts.AutoEnhance && metrics.OverallQuality < p.opts.QualityThreshold {
		enhanced, enhancement := p.enhancer.Enhance(gray, metrics)
		gray = enhanced
		result.Enhancement = &enhancement
		result.Quality = enhancement.QualityAfter
		gatingQuality = enhancement.QualityAfter.OverallQuality
		logger.WithStage("enhance").WithField("steps", enhancement.AppliedSteps).Debug("Sheet enhanced")
	}

	result.BoundaryFound = true
	if !p.opts.SkipNormalization {
		normalized, found := p.normalizer.Normalize(gray)
		gray = normalized
		result.BoundaryFound = found
		if !found {
			result.Warnings = append(result.Warnings, warnBoundaryNotFound)
		}
	}

	// Template coordinates are defined in page space; fit the sheet to it.
	gray = fitToPage(gray, tpl)

	result.DetectedSet = p.opts.ForcedSet
	if !p.opts.SkipSetDetection {
		result.DetectedSet = p.setDetector.Detect(gray, tpl)
	}
	if result.DetectedSet == "" {
		result.DetectedSet = bubbles.DefaultSet
	}

	analyzer := bubbles.NewAnalyzer(p.opts.FillThreshold)
	detections := analyzer.DetectWithTemplate(gray, tpl)
	result.Detections = detections
	result.Responses = bubbles.Responses(detections)

	confidence := bubbles.MeanConfidence(detections)
	if countMarked(detections) == 0 {
		result.Warnings = append(result.Warnings, warnNoMarks)
	}
	if gatingQuality < p.opts.QualityThreshold {
		result.Warnings = append(result.Warnings, warnLowQuality)
	}
	if confidence < p.opts.ConfidenceThreshold {
		result.Warnings = append(result.Warnings, warnLowConfidence)
	}

	if !p.opts.SkipEvaluation {
		key, err := keys.ForSet(result.DetectedSet)
		if err != nil {
			result.Status = models.StatusError
			result.ErrorMessage = err.Error()
			return result
		}
		evaluation, err := p.evaluator.Evaluate(result.Responses, key, tpl.TotalQuestions)
		if err != nil {
			result.Status = models.StatusError
			result.ErrorMessage = err.Error()
			return result
		}
		result.Evaluation = evaluation
	}

	if len(result.Warnings) > 0 || !result.BoundaryFound {
		result.Status = models.StatusWarning
	}

	logger.WithFields(logrus.Fields{
		"status":     result.Status,
		"set":        result.DetectedSet,
		"boundary":   result.BoundaryFound,
		"confidence": confidence,
		"quality":    gatingQuality,
	}).Debug("Sheet processed")

	return result
}

// fitToPage resizes the sheet to the template's page dimensions so bubble
// coordinates line up.
func fitToPage(gray *image.Gray, tpl *template.Template) *image.Gray {
	w, h := tpl.PageDimensions.X, tpl.PageDimensions.Y
	if w <= 0 || h <= 0 {
		return gray
	}
	if gray.Bounds().Dx() == w && gray.Bounds().Dy() == h {
		return gray
	}
	return imgutil.ToGray(imaging.Resize(gray, w, h, imaging.Lanczos))
}

func countMarked(detections []models.BubbleDetection) int {
	marked := 0
	for _, d := range detections {
		if len(d.DetectedOptions) > 0 {
			marked++
		}
	}
	return marked
}
