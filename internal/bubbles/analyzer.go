// Package bubbles detects marked answer bubbles on a normalized sheet
// image, either from template coordinates or from a grid heuristic when no
// template region matches.
package bubbles

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"

	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/models"
	"go-omr-grader/pkg/template"
)

const (
	// Intensity below which a pixel counts as mark ink.
	darkPixelThreshold = 128
	// Default fill ratio at which a bubble counts as marked.
	DefaultFillThreshold = 0.3
)

// Analyzer detects marked bubbles using template coordinates.
type Analyzer struct {
	fillThreshold float64
}

// NewAnalyzer creates a bubble analyzer. A non-positive threshold falls
// back to the default.
func NewAnalyzer(fillThreshold float64) *Analyzer {
	if fillThreshold <= 0 {
		fillThreshold = DefaultFillThreshold
	}
	return &Analyzer{fillThreshold: fillThreshold}
}

// DetectWithTemplate walks every question region of the template and
// measures each bubble's fill. Bubbles that fall outside their question
// region are skipped. Detected options are reported in template order,
// which for the built-in layouts is alphabetical.
func (a *Analyzer) DetectWithTemplate(gray *image.Gray, tpl *template.Template) []models.BubbleDetection {
	detections := make([]models.BubbleDetection, 0, len(tpl.Questions))

	for _, q := range tpl.Questions {
		region := q.RegionBounds.Rect()

		var detected []string
		var confidences []float64

		for _, b := range q.Bubbles {
			if !b.Rect().In(region) {
				// Mislaid template entry; skip rather than sample noise.
				continue
			}
			fill := a.bubbleFill(gray, b.Rect())
			if fill >= a.fillThreshold {
				detected = append(detected, b.OptionLetter)
				confidences = append(confidences, fill)
			}
		}

		detections = append(detections, models.BubbleDetection{
			QuestionNumber:      q.QuestionNumber,
			DetectedOptions:     detected,
			ConfidenceScores:    confidences,
			IsMultipleSelection: len(detected) > 1,
			QualityScore:        meanOrZero(confidences),
		})
	}
	return detections
}

// bubbleFill measures the dark-pixel ratio within a bubble footprint and
// smooths the extremes: nearly empty reads as 0, heavily filled as 1.
func (a *Analyzer) bubbleFill(gray *image.Gray, r image.Rectangle) float64 {
	region := imgutil.SubGray(gray, r)
	ratio := imgutil.FillRatio(region, darkPixelThreshold)

	if ratio < 0.1 {
		return 0
	}
	if ratio > 0.7 {
		return 1
	}
	return ratio
}

// Responses flattens detections into the per-question answer map. Questions
// with no marks map to an empty slice so downstream scoring can tell
// "unanswered" from "absent".
func Responses(detections []models.BubbleDetection) map[int][]string {
	responses := make(map[int][]string, len(detections))
	for _, d := range detections {
		opts := make([]string, len(d.DetectedOptions))
		copy(opts, d.DetectedOptions)
		sort.Strings(opts)
		responses[d.QuestionNumber] = opts
	}
	return responses
}

// MeanConfidence averages the per-question quality scores of questions
// that have at least one mark.
func MeanConfidence(detections []models.BubbleDetection) float64 {
	var scores []float64
	for _, d := range detections {
		if len(d.DetectedOptions) > 0 {
			scores = append(scores, d.QualityScore)
		}
	}
	return meanOrZero(scores)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
