package quality

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go-omr-grader/pkg/models"
)

func flatGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// noisyGray perturbs a flat image with a deterministic pseudo-random pattern.
func noisyGray(w, h int, base uint8, amplitude int) *image.Gray {
	img := flatGray(w, h, base)
	seed := uint32(12345)
	for i := range img.Pix {
		seed = seed*1664525 + 1013904223
		delta := int(seed%uint32(2*amplitude+1)) - amplitude
		v := int(img.Pix[i]) + delta
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v)
	}
	return img
}

func assertScoresInRange(t *testing.T, m models.QualityMetrics) {
	t.Helper()
	scores := map[string]float64{
		"sharpness":  m.Sharpness,
		"contrast":   m.Contrast,
		"brightness": m.Brightness,
		"noise":      m.NoiseLevel,
		"overall":    m.OverallQuality,
	}
	for name, v := range scores {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want within [0, 1]", name, v)
		}
	}
}

func TestAssessFlatImage(t *testing.T) {
	a := NewAssessor()
	m := a.Assess(flatGray(64, 64, 128))

	assertScoresInRange(t, m)
	if m.Sharpness != 0 {
		t.Errorf("flat image sharpness = %v, want 0", m.Sharpness)
	}
	if m.Contrast != 0 {
		t.Errorf("flat image contrast = %v, want 0", m.Contrast)
	}
	if math.Abs(m.Brightness-128.0/255.0) > 0.01 {
		t.Errorf("brightness = %v, want ~0.502", m.Brightness)
	}
	if m.NoiseLevel != 0 {
		t.Errorf("flat image noise = %v, want 0", m.NoiseLevel)
	}
	if m.SkewAngle != 0 {
		t.Errorf("flat image skew = %v, want 0", m.SkewAngle)
	}
}

func TestAssessScoresStayInRangeOnExtremeInput(t *testing.T) {
	a := NewAssessor()

	// Per-pixel checkerboard maximizes every local statistic.
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	assertScoresInRange(t, a.Assess(img))
}

func TestAssessEmptyImage(t *testing.T) {
	a := NewAssessor()
	m := a.Assess(image.NewGray(image.Rect(0, 0, 0, 0)))
	assertScoresInRange(t, m)
	if len(m.Recommendations) == 0 {
		t.Error("empty image should carry a recommendation")
	}
}

func TestNoiseMetricRisesWithNoise(t *testing.T) {
	a := NewAssessor()
	clean := a.Assess(flatGray(100, 100, 128))
	noisy := a.Assess(noisyGray(100, 100, 128, 60))

	if noisy.NoiseLevel <= clean.NoiseLevel {
		t.Errorf("noise metric did not rise: clean=%v noisy=%v", clean.NoiseLevel, noisy.NoiseLevel)
	}
}

func TestSkewDetectionOnDiagonalLine(t *testing.T) {
	a := NewAssessor()

	// White page with a long dark 45-degree stroke.
	img := flatGray(300, 300, 255)
	for i := 20; i < 280; i++ {
		img.SetGray(i, i, color.Gray{Y: 0})
		img.SetGray(i+1, i, color.Gray{Y: 0})
		img.SetGray(i, i+1, color.Gray{Y: 0})
	}

	m := a.Assess(img)
	if math.Abs(math.Abs(m.SkewAngle)-45) > 3 {
		t.Errorf("skew angle = %v, want magnitude near 45", m.SkewAngle)
	}
}

func TestRecommendationsForPoorImage(t *testing.T) {
	a := NewAssessor()
	m := a.Assess(flatGray(64, 64, 20))

	if len(m.Recommendations) == 0 {
		t.Fatal("poor image should carry recommendations")
	}
	var sawBlurry, sawDark bool
	for _, r := range m.Recommendations {
		switch r {
		case "Image is blurry - use better focus or higher resolution":
			sawBlurry = true
		case "Image is too dark - increase lighting":
			sawDark = true
		}
	}
	if !sawBlurry || !sawDark {
		t.Errorf("missing expected recommendations, got %v", m.Recommendations)
	}
}

func TestAcceptableFallbackRecommendation(t *testing.T) {
	m := models.QualityMetrics{
		Sharpness:  0.8,
		Contrast:   0.6,
		Brightness: 0.5,
		NoiseLevel: 0.1,
		SkewAngle:  0.2,
	}
	recs := recommendations(m)
	if len(recs) != 1 || recs[0] != "Image quality is acceptable" {
		t.Errorf("recommendations = %v, want the acceptable fallback only", recs)
	}
}

func TestOverallQualityWeights(t *testing.T) {
	m := models.QualityMetrics{
		Sharpness:  1,
		Contrast:   1,
		Brightness: 0.5,
		NoiseLevel: 0,
		SkewAngle:  0,
	}
	if got := overallQuality(m); math.Abs(got-1) > 1e-9 {
		t.Errorf("ideal metrics overall = %v, want 1", got)
	}

	m.Brightness = 1 // fully washed out zeroes the brightness term
	want := 0.30 + 0.25 + 0.15 + 0.10
	if got := overallQuality(m); math.Abs(got-want) > 1e-9 {
		t.Errorf("washed-out overall = %v, want %v", got, want)
	}
}
