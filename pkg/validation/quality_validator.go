package validation

import (
	"math"

	"go-omr-grader/pkg/models"
)

// QualityThresholds defines configurable thresholds for sheet quality validation
type QualityThresholds struct {
	// Metric thresholds, all normalized scores in [0,1]
	MinSharpness  float64
	MinContrast   float64
	MinBrightness float64
	MaxBrightness float64
	MaxNoiseLevel float64

	// Skew threshold (in degrees)
	MaxSkewAngle float64

	// Resolution thresholds
	MinWidth       int
	MinHeight      int
	MinTotalPixels int
}

// DefaultQualityThresholds returns the default sheet quality thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinSharpness:   0.2,
		MinContrast:    0.15,
		MinBrightness:  0.25,
		MaxBrightness:  0.9,
		MaxNoiseLevel:  0.5,
		MaxSkewAngle:   5.0,
		MinWidth:       600,
		MinHeight:      800,
		MinTotalPixels: 480000,
	}
}

// QualityValidator handles sheet quality validation logic
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// QualityIssue represents a quality validation issue
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// ValidateSheetQuality checks a sheet's measured metrics and dimensions
// against the thresholds. Resolution failures are errors because bubble
// footprints become too small to sample; metric failures are warnings
// since enhancement may still recover the sheet.
func (qv *QualityValidator) ValidateSheetQuality(metrics models.QualityMetrics, width, height int) []QualityIssue {
	var issues []QualityIssue

	totalPixels := width * height
	if totalPixels < qv.thresholds.MinTotalPixels ||
		width < qv.thresholds.MinWidth ||
		height < qv.thresholds.MinHeight {
		issues = append(issues, QualityIssue{
			Type:        "low_resolution",
			Message:     "Scan resolution is too low for reliable bubble detection. Rescan at a higher resolution.",
			Severity:    "error",
			ActualValue: float64(totalPixels),
			Threshold:   float64(qv.thresholds.MinTotalPixels),
		})
	}

	if metrics.Sharpness < qv.thresholds.MinSharpness {
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Scan is blurry. Hold the camera steady or rescan with better focus.",
			Severity:    "warning",
			ActualValue: metrics.Sharpness,
			Threshold:   qv.thresholds.MinSharpness,
		})
	}

	if metrics.Contrast < qv.thresholds.MinContrast {
		issues = append(issues, QualityIssue{
			Type:        "low_contrast",
			Message:     "Marks and paper are hard to tell apart. Improve the lighting.",
			Severity:    "warning",
			ActualValue: metrics.Contrast,
			Threshold:   qv.thresholds.MinContrast,
		})
	}

	if metrics.Brightness < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     "Scan is too dark. Use more light.",
			Severity:    "warning",
			ActualValue: metrics.Brightness,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if metrics.Brightness > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_bright",
			Message:     "Scan is washed out. Avoid strong light or flash.",
			Severity:    "warning",
			ActualValue: metrics.Brightness,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	if metrics.NoiseLevel > qv.thresholds.MaxNoiseLevel {
		issues = append(issues, QualityIssue{
			Type:        "high_noise",
			Message:     "Scan is noisy. Use a better camera or scanner setting.",
			Severity:    "warning",
			ActualValue: metrics.NoiseLevel,
			Threshold:   qv.thresholds.MaxNoiseLevel,
		})
	}

	if math.Abs(metrics.SkewAngle) > qv.thresholds.MaxSkewAngle {
		issues = append(issues, QualityIssue{
			Type:        "skew",
			Message:     "Sheet is tilted. Align the paper before scanning.",
			Severity:    "warning",
			ActualValue: math.Abs(metrics.SkewAngle),
			Threshold:   qv.thresholds.MaxSkewAngle,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts quality issues to simple messages
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any critical (error severity) issues
func (qv *QualityValidator) HasCriticalIssues(issues []QualityIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
