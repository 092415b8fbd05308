package validation

import (
	"testing"

	"go-omr-grader/pkg/models"
)

func goodMetrics() models.QualityMetrics {
	return models.QualityMetrics{
		Sharpness:      0.7,
		Contrast:       0.5,
		Brightness:     0.55,
		NoiseLevel:     0.1,
		SkewAngle:      0.5,
		OverallQuality: 0.8,
	}
}

func TestNewQualityValidator(t *testing.T) {
	validator := NewQualityValidator()
	if validator == nil {
		t.Fatal("Expected non-nil quality validator")
	}

	expected := DefaultQualityThresholds().MinSharpness
	if validator.thresholds.MinSharpness != expected {
		t.Errorf("Expected MinSharpness to be %f, got %f", expected, validator.thresholds.MinSharpness)
	}
}

func TestNewQualityValidatorWithThresholds(t *testing.T) {
	customThresholds := QualityThresholds{
		MinSharpness: 0.5,
		MaxSkewAngle: 2.0,
	}

	validator := NewQualityValidatorWithThresholds(customThresholds)
	if validator.thresholds.MinSharpness != 0.5 {
		t.Errorf("Expected custom MinSharpness to be 0.5, got %f", validator.thresholds.MinSharpness)
	}
}

func TestValidateSheetQuality_CleanScan(t *testing.T) {
	validator := NewQualityValidator()

	issues := validator.ValidateSheetQuality(goodMetrics(), 2480, 3508)
	if len(issues) > 0 {
		t.Errorf("Expected no issues for a clean A4 scan, got: %v", issues)
	}
}

func TestValidateSheetQuality_LowResolutionIsCritical(t *testing.T) {
	validator := NewQualityValidator()

	issues := validator.ValidateSheetQuality(goodMetrics(), 300, 400)
	if len(issues) != 1 {
		t.Fatalf("Expected 1 issue, got %d: %v", len(issues), issues)
	}
	if issues[0].Type != "low_resolution" || issues[0].Severity != "error" {
		t.Errorf("Expected a low_resolution error, got %+v", issues[0])
	}
	if !validator.HasCriticalIssues(issues) {
		t.Error("Low resolution should be critical")
	}
}

func TestValidateSheetQuality_MetricWarnings(t *testing.T) {
	validator := NewQualityValidator()

	metrics := models.QualityMetrics{
		Sharpness:  0.05,
		Contrast:   0.05,
		Brightness: 0.1,
		NoiseLevel: 0.8,
		SkewAngle:  -8.0,
	}
	issues := validator.ValidateSheetQuality(metrics, 2480, 3508)

	wantTypes := map[string]bool{
		"blurriness": false, "low_contrast": false,
		"too_dark": false, "high_noise": false, "skew": false,
	}
	for _, issue := range issues {
		if issue.Severity != "warning" {
			t.Errorf("Issue %s severity = %s, want warning", issue.Type, issue.Severity)
		}
		wantTypes[issue.Type] = true
	}
	for typ, seen := range wantTypes {
		if !seen {
			t.Errorf("Expected issue type %s, got %v", typ, issues)
		}
	}
	if validator.HasCriticalIssues(issues) {
		t.Error("Metric warnings should not be critical")
	}
}

func TestValidateSheetQuality_BrightnessBounds(t *testing.T) {
	validator := NewQualityValidator()

	bright := goodMetrics()
	bright.Brightness = 0.95
	issues := validator.ValidateSheetQuality(bright, 2480, 3508)
	if len(issues) != 1 || issues[0].Type != "too_bright" {
		t.Errorf("Expected only too_bright, got %v", issues)
	}
}

func TestConvertIssuesToMessages(t *testing.T) {
	validator := NewQualityValidator()
	issues := []QualityIssue{
		{Type: "skew", Message: "Sheet is tilted."},
		{Type: "too_dark", Message: "Scan is too dark."},
	}

	messages := validator.ConvertIssuesToMessages(issues)
	if len(messages) != 2 || messages[0] != "Sheet is tilted." {
		t.Errorf("Unexpected messages: %v", messages)
	}
	if got := validator.ConvertIssuesToMessages(nil); got != nil {
		t.Errorf("Expected nil messages for no issues, got %v", got)
	}
}
