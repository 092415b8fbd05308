// Package enhance applies corrective filters to low-quality sheet images.
// Each step runs only when the measured metrics call for it; shadow removal
// always runs last so uneven lighting never reaches bubble detection.
package enhance

import (
	"image"
	"time"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"

	"go-omr-grader/internal/quality"
	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/models"
)

// Step names recorded in results, in pipeline order.
const (
	StepNoiseReduction       = "noise_reduction"
	StepSkewCorrection       = "skew_correction"
	StepLightingNormalization = "lighting_normalization"
	StepContrastEnhancement  = "contrast_enhancement"
	StepSharpening           = "sharpening"
	StepShadowRemoval        = "shadow_removal"
)

// Trigger thresholds. A metric on the wrong side of its threshold enables
// the corresponding step.
const (
	noiseTrigger      = 0.3
	skewTriggerDeg    = 0.5
	darkTrigger       = 0.4
	brightTrigger     = 0.8
	contrastTrigger   = 0.5
	sharpnessTrigger  = 0.6
)

// Enhancer runs the conditional enhancement pipeline.
type Enhancer struct {
	assessor *quality.Assessor
}

// NewEnhancer creates an enhancer that re-assesses quality after the run.
func NewEnhancer(assessor *quality.Assessor) *Enhancer {
	return &Enhancer{assessor: assessor}
}

// Enhance applies the enabled steps and reports before/after metrics. The
// input image is never mutated. Degenerate images pass through untouched.
func (e *Enhancer) Enhance(gray *image.Gray, before models.QualityMetrics) (*image.Gray, models.EnhancementResult) {
	start := time.Now()
	result := models.EnhancementResult{QualityBefore: before}

	bounds := gray.Bounds()
	if bounds.Dx() < 3 || bounds.Dy() < 3 {
		result.QualityAfter = before
		result.ElapsedTime = time.Since(start)
		return gray, result
	}

	out := gray

	if before.NoiseLevel > noiseTrigger {
		out = reduceNoise(out)
		result.AppliedSteps = append(result.AppliedSteps, StepNoiseReduction)
	}
	if abs(before.SkewAngle) > skewTriggerDeg {
		out = correctSkew(out, before.SkewAngle)
		result.AppliedSteps = append(result.AppliedSteps, StepSkewCorrection)
	}
	if before.Brightness < darkTrigger || before.Brightness > brightTrigger {
		out = normalizeLighting(out)
		result.AppliedSteps = append(result.AppliedSteps, StepLightingNormalization)
	}
	if before.Contrast < contrastTrigger {
		out = enhanceContrast(out)
		result.AppliedSteps = append(result.AppliedSteps, StepContrastEnhancement)
	}
	if before.Sharpness < sharpnessTrigger {
		out = sharpen(out)
		result.AppliedSteps = append(result.AppliedSteps, StepSharpening)
	}

	// Shadow removal is unconditional so bubble fill ratios stay stable
	// under uneven lighting.
	out = removeShadows(out)
	result.AppliedSteps = append(result.AppliedSteps, StepShadowRemoval)

	result.QualityAfter = e.assessor.Assess(out)
	result.ElapsedTime = time.Since(start)
	return out, result
}

// reduceNoise blends a gaussian-smoothed copy with a median-filtered copy.
// The gaussian carries most of the weight; the median contributes
// salt-and-pepper suppression without softening edges as much.
func reduceNoise(gray *image.Gray) *image.Gray {
	gaussian := imgutil.ToGray(blur.Gaussian(gray, 1.5))
	median := imgutil.ToGray(effect.Median(gray, 3))
	return imgutil.BlendGray(gaussian, median, 0.7)
}

// correctSkew rotates the image about its center by the negated measured
// angle. The canvas keeps its size; corners introduced by the rotation are
// filled by the rotation backend.
func correctSkew(gray *image.Gray, angleDeg float64) *image.Gray {
	rotated := transform.Rotate(gray, -angleDeg, &transform.RotationOptions{
		ResizeBounds: false,
	})
	return imgutil.ToGray(rotated)
}

// normalizeLighting applies contrast-limited adaptive histogram
// equalization over an 8x8 tile grid.
func normalizeLighting(gray *image.Gray) *image.Gray {
	return applyCLAHE(gray, 3.0, 8, 8)
}

// enhanceContrast blends global equalization with a gamma lift.
func enhanceContrast(gray *image.Gray) *image.Gray {
	equalized := imgutil.EqualizeGray(gray)
	gammaAdjusted := imgutil.ToGray(adjust.Gamma(gray, 1.2))
	return imgutil.BlendGray(equalized, gammaAdjusted, 0.6)
}

// sharpen blends an unsharp mask with a Laplacian edge boost.
func sharpen(gray *image.Gray) *image.Gray {
	unsharp := imgutil.ToGray(effect.UnsharpMask(gray, 2.0, 1.0))
	laplacianBoosted := laplacianSharpen(gray)
	return imgutil.BlendGray(unsharp, laplacianBoosted, 0.8)
}

// laplacianSharpen adds the negated Laplacian response back onto the image.
func laplacianSharpen(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	out := imgutil.CloneGray(gray)
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			lap := -4*center +
				float64(gray.GrayAt(x, y-1).Y) + float64(gray.GrayAt(x, y+1).Y) +
				float64(gray.GrayAt(x-1, y).Y) + float64(gray.GrayAt(x+1, y).Y)
			out.Pix[out.PixOffset(x, y)] = imgutil.ClampUint8(center - lap)
		}
	}
	return out
}

// removeShadows estimates the illumination field with a large morphological
// close, divides it out and re-equalizes the result.
func removeShadows(gray *image.Gray) *image.Gray {
	// Morphological close with a large structuring element approximates
	// the paper background without the markings.
	background := imgutil.ToGray(effect.Erode(effect.Dilate(gray, 10), 10))
	background = imgutil.ToGray(blur.Gaussian(background, 3.0))

	bounds := gray.Bounds()
	flattened := image.NewGray(bounds)
	for i := range gray.Pix {
		b := float64(background.Pix[i])
		if b < 1 {
			b = 1
		}
		flattened.Pix[i] = imgutil.ClampUint8(float64(gray.Pix[i]) / b * 255)
	}
	return imgutil.EqualizeGray(flattened)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
