// Package quality scores scanned answer-sheet images before processing.
// All metrics are objective, computed from pixel statistics, and normalized
// to [0, 1] so downstream thresholds stay comparable across scanners.
package quality

import (
	"image"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/models"
)

// Normalization constants for the raw statistics.
const (
	sharpnessScale = 1000.0
	contrastScale  = 128.0
	noiseScale     = 10000.0
	skewScale      = 10.0
)

// Recommendation thresholds.
const (
	lowSharpness  = 0.4
	lowContrast   = 0.3
	lowBrightness = 0.3
	highBrightness = 0.8
	highNoise     = 0.4
	highSkew      = 1.0
)

// Assessor computes quality metrics for grayscale sheet images.
type Assessor struct {
	slicePool sync.Pool
}

// NewAssessor creates a quality assessor.
func NewAssessor() *Assessor {
	return &Assessor{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Assess computes the full metric set for a grayscale image.
func (a *Assessor) Assess(gray *image.Gray) models.QualityMetrics {
	bounds := gray.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return models.QualityMetrics{
			Recommendations: []string{"Image is empty"},
		}
	}

	m := models.QualityMetrics{
		Sharpness:  a.assessSharpness(gray),
		Contrast:   a.assessContrast(gray),
		Brightness: a.assessBrightness(gray),
		NoiseLevel: a.assessNoise(gray),
		SkewAngle:  a.assessSkew(gray),
	}
	m.OverallQuality = overallQuality(m)
	m.Recommendations = recommendations(m)
	return m
}

// assessSharpness maps Laplacian variance onto [0, 1].
func (a *Assessor) assessSharpness(gray *image.Gray) float64 {
	variance := a.laplacianVariance(gray)
	return imgutil.Clamp01(variance / sharpnessScale)
}

// laplacianVariance computes the variance of the 4-neighbour Laplacian
// response over the image interior.
func (a *Assessor) laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := a.slicePool.Get().([]float64)
	defer a.slicePool.Put(data[:0])
	if cap(data) < (width-2)*(height-2) {
		data = make([]float64, 0, (width-2)*(height-2))
	}

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)
			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// assessContrast maps the intensity standard deviation onto [0, 1].
func (a *Assessor) assessContrast(gray *image.Gray) float64 {
	data := a.slicePool.Get().([]float64)
	defer a.slicePool.Put(data[:0])

	bounds := gray.Bounds()
	if cap(data) < bounds.Dx()*bounds.Dy() {
		data = make([]float64, 0, bounds.Dx()*bounds.Dy())
	}
	for _, v := range gray.Pix {
		data = append(data, float64(v))
	}
	if len(data) < 2 {
		return 0
	}
	return imgutil.Clamp01(stat.StdDev(data, nil) / contrastScale)
}

// assessBrightness maps mean intensity onto [0, 1].
func (a *Assessor) assessBrightness(gray *image.Gray) float64 {
	return imgutil.Clamp01(imgutil.MeanGray(gray) / 255.0)
}

// assessNoise estimates noise as the variance of a high-pass filter
// response, mapped onto [0, 1].
func (a *Assessor) assessNoise(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := a.slicePool.Get().([]float64)
	defer a.slicePool.Put(data[:0])
	if cap(data) < (width-2)*(height-2) {
		data = make([]float64, 0, (width-2)*(height-2))
	}

	// High-pass kernel: [-1,-1,-1; -1,8,-1; -1,-1,-1]
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			sum := 8 * float64(gray.GrayAt(x, y).Y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					sum -= float64(gray.GrayAt(x+dx, y+dy).Y)
				}
			}
			data = append(data, sum)
		}
	}
	if len(data) < 2 {
		return 0
	}
	return imgutil.Clamp01(stat.Variance(data, nil) / noiseScale)
}

// assessSkew estimates document rotation in degrees from the dominant line
// directions. Zero when no reliable lines are found.
func (a *Assessor) assessSkew(gray *image.Gray) float64 {
	angles := detectLineAngles(gray)
	if len(angles) == 0 {
		return 0
	}
	sort.Float64s(angles)
	return stat.Quantile(0.5, stat.Empirical, angles, nil)
}

// overallQuality combines the sub-scores with fixed weights. Each term is
// clamped so a single pathological metric cannot push the result out of
// range.
func overallQuality(m models.QualityMetrics) float64 {
	brightnessTerm := imgutil.Clamp01(1 - abs(m.Brightness-0.5)*2)
	noiseTerm := imgutil.Clamp01(1 - m.NoiseLevel)
	skewTerm := imgutil.Clamp01(1 - abs(m.SkewAngle)/skewScale)

	score := 0.30*imgutil.Clamp01(m.Sharpness) +
		0.25*imgutil.Clamp01(m.Contrast) +
		0.20*brightnessTerm +
		0.15*noiseTerm +
		0.10*skewTerm
	return imgutil.Clamp01(score)
}

func recommendations(m models.QualityMetrics) []string {
	var recs []string
	if m.Sharpness < lowSharpness {
		recs = append(recs, "Image is blurry - use better focus or higher resolution")
	}
	if m.Contrast < lowContrast {
		recs = append(recs, "Low contrast - improve lighting conditions")
	}
	if m.Brightness < lowBrightness {
		recs = append(recs, "Image is too dark - increase lighting")
	} else if m.Brightness > highBrightness {
		recs = append(recs, "Image is too bright - reduce lighting or exposure")
	}
	if m.NoiseLevel > highNoise {
		recs = append(recs, "High noise level - use better camera or lighting")
	}
	if abs(m.SkewAngle) > highSkew {
		recs = append(recs, "Document is skewed - align document properly")
	}
	if len(recs) == 0 {
		recs = append(recs, "Image quality is acceptable")
	}
	return recs
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
