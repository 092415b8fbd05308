package quality

import (
	"image"
	"math"
)

const (
	edgeGradientThreshold = 100
	houghVoteThreshold    = 100
	houghAngleBins        = 180
)

// detectLineAngles finds dominant straight lines and returns their angles in
// degrees, folded to (-90, 90] and filtered to exclude near-horizontal and
// near-vertical lines. The survivors indicate document skew.
func detectLineAngles(gray *image.Gray) []float64 {
	edges := sobelEdges(gray)
	if len(edges) == 0 {
		return nil
	}

	bounds := gray.Bounds()
	maxRho := int(math.Ceil(math.Hypot(float64(bounds.Dx()), float64(bounds.Dy()))))
	rhoBins := 2*maxRho + 1

	sin := make([]float64, houghAngleBins)
	cos := make([]float64, houghAngleBins)
	for t := 0; t < houghAngleBins; t++ {
		theta := float64(t) * math.Pi / houghAngleBins
		sin[t] = math.Sin(theta)
		cos[t] = math.Cos(theta)
	}

	acc := make([]int, houghAngleBins*rhoBins)
	for _, p := range edges {
		x := float64(p.X - bounds.Min.X)
		y := float64(p.Y - bounds.Min.Y)
		for t := 0; t < houghAngleBins; t++ {
			rho := int(math.Round(x*cos[t] + y*sin[t]))
			acc[t*rhoBins+rho+maxRho]++
		}
	}

	var angles []float64
	for t := 0; t < houghAngleBins; t++ {
		for r := 0; r < rhoBins; r++ {
			if acc[t*rhoBins+r] < houghVoteThreshold {
				continue
			}
			angle := float64(t) * 180 / houghAngleBins
			if angle > 90 {
				angle -= 180
			} else if angle < -90 {
				angle += 180
			}
			// Horizontal and vertical lines carry no skew information.
			if math.Abs(angle) > 5 && math.Abs(angle) < 85 {
				angles = append(angles, angle)
			}
		}
	}
	return angles
}

// sobelEdges returns the pixels whose Sobel gradient magnitude exceeds the
// edge threshold.
func sobelEdges(gray *image.Gray) []image.Point {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil
	}

	var edges []image.Point
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			gx := -int(gray.GrayAt(x-1, y-1).Y) + int(gray.GrayAt(x+1, y-1).Y) +
				-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
				-int(gray.GrayAt(x-1, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y)

			gy := -int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - int(gray.GrayAt(x+1, y-1).Y) +
				int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + int(gray.GrayAt(x+1, y+1).Y)

			if math.Sqrt(float64(gx*gx+gy*gy)) > edgeGradientThreshold {
				edges = append(edges, image.Point{X: x, Y: y})
			}
		}
	}
	return edges
}
