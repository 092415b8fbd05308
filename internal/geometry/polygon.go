package geometry

import (
	"image"
	"math"
	"sort"
)

// Point2D is a sub-pixel page coordinate.
type Point2D struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm at the given tolerance.
func ApproxPolygon(c Contour, epsilon float64) []image.Point {
	if len(c) < 3 {
		return []image.Point(c)
	}

	// Split the closed curve at the two most distant points so each half
	// can be simplified as an open polyline.
	iA, iB := farthestPair(c)
	if iA == iB {
		return []image.Point{c[iA]}
	}

	first := append(Contour{}, c[iA:iB+1]...)
	second := append(Contour{}, c[iB:]...)
	second = append(second, c[:iA+1]...)

	simplified := douglasPeucker(first, epsilon)
	tail := douglasPeucker(second, epsilon)
	// Drop the duplicated junction points.
	if len(tail) > 2 {
		simplified = append(simplified, tail[1:len(tail)-1]...)
	}
	return simplified
}

// farthestPair finds indices of two approximately most distant contour
// points. The first is the point farthest from point 0, the second is the
// point farthest from the first.
func farthestPair(c Contour) (int, int) {
	iA := 0
	best := -1.0
	for i, p := range c {
		d := dist(c[0], p)
		if d > best {
			best = d
			iA = i
		}
	}
	iB := iA
	best = -1.0
	for i, p := range c {
		d := dist(c[iA], p)
		if d > best {
			best = d
			iB = i
		}
	}
	if iA > iB {
		iA, iB = iB, iA
	}
	return iA, iB
}

func douglasPeucker(points []image.Point, epsilon float64) []image.Point {
	if len(points) < 3 {
		return points
	}

	maxDist := 0.0
	index := 0
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], points[0], points[len(points)-1])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{points[0], points[len(points)-1]}
	}

	left := douglasPeucker(points[:index+1], epsilon)
	right := douglasPeucker(points[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return dist(a, p)
	}
	return math.Abs(dy*float64(p.X)-dx*float64(p.Y)+float64(b.X*a.Y)-float64(b.Y*a.X)) / length
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// OrderCorners orders four corner points deterministically as TL, TR, BR,
// BL: sort by Y to split top and bottom pairs, then sort each pair by X.
func OrderCorners(corners []Point2D) []Point2D {
	if len(corners) != 4 {
		return corners
	}

	sorted := make([]Point2D, 4)
	copy(sorted, corners)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	topPair := sorted[:2]
	bottomPair := sorted[2:]

	sort.Slice(topPair, func(i, j int) bool {
		return topPair[i].X < topPair[j].X
	})
	sort.Slice(bottomPair, func(i, j int) bool {
		return bottomPair[i].X < bottomPair[j].X
	})

	return []Point2D{
		topPair[0],    // TL
		topPair[1],    // TR
		bottomPair[1], // BR
		bottomPair[0], // BL
	}
}
