package geometry

import (
	"errors"
	"image"
	"math"

	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/logger"
)

// ErrDegenerateQuad reports a boundary whose corners collapse to a line.
var ErrDegenerateQuad = errors.New("boundary quadrilateral is degenerate")

const (
	// Minimum contour area considered a sheet boundary candidate.
	minBoundaryArea = 10000.0
	// Polygon approximation tolerance as a fraction of the perimeter.
	approxEpsilonRatio = 0.02
	// Threshold separating dark boundary ink from paper.
	binarizeThreshold = 128
)

// Normalizer detects the sheet boundary and warps it to a rectangle.
type Normalizer struct{}

// NewNormalizer creates a geometry normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize locates the largest four-cornered dark boundary and warps its
// interior into a fronto-parallel rectangle. When no boundary is found the
// input is returned unchanged with found=false; callers degrade to
// template-coordinate analysis in that case.
func (n *Normalizer) Normalize(gray *image.Gray) (out *image.Gray, found bool) {
	corners := n.DetectBoundary(gray)
	if corners == nil {
		return gray, false
	}

	warped, err := warpToRect(gray, corners)
	if err != nil {
		logger.WithError(err).Warn("Perspective warp failed, keeping original geometry")
		return gray, false
	}
	return warped, true
}

// DetectBoundary finds the sheet's four corners ordered TL, TR, BR, BL, or
// nil when no plausible boundary exists.
func (n *Normalizer) DetectBoundary(gray *image.Gray) []Point2D {
	contours := FindExternalContours(gray, binarizeThreshold)

	var best []image.Point
	bestArea := minBoundaryArea
	for _, c := range contours {
		area := c.Area()
		if area < bestArea {
			continue
		}
		epsilon := approxEpsilonRatio * c.Perimeter()
		approx := ApproxPolygon(c, epsilon)
		if len(approx) != 4 {
			continue
		}
		best = approx
		bestArea = area
	}
	if best == nil {
		logger.WithFields(logrus.Fields{
			"contours": len(contours),
		}).Debug("No sheet boundary found")
		return nil
	}

	corners := make([]Point2D, 4)
	for i, p := range best {
		corners[i] = Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return OrderCorners(corners)
}

// warpToRect maps the ordered quadrilateral onto an axis-aligned rectangle
// sized by the longer of each pair of opposite edges.
func warpToRect(gray *image.Gray, corners []Point2D) (*image.Gray, error) {
	tl, tr, br, bl := corners[0], corners[1], corners[2], corners[3]

	width := int(math.Max(tl.Distance(tr), bl.Distance(br)))
	height := int(math.Max(tl.Distance(bl), tr.Distance(br)))
	if width < 2 || height < 2 {
		return nil, ErrDegenerateQuad
	}

	dst := []Point2D{
		{X: 0, Y: 0},
		{X: float64(width - 1), Y: 0},
		{X: float64(width - 1), Y: float64(height - 1)},
		{X: 0, Y: float64(height - 1)},
	}

	// Inverse mapping: destination pixel -> source pixel.
	inverse, err := ComputeHomography(dst, corners)
	if err != nil {
		return nil, err
	}
	return WarpPerspective(gray, inverse, width, height), nil
}
