// Package geometry locates the sheet boundary in a scanned image and warps
// it into a fronto-parallel view so template coordinates line up with the
// printed grid.
package geometry

import (
	"image"
	"math"
)

// Contour is a closed boundary traced around a connected dark region.
type Contour []image.Point

// Area computes the enclosed area via the shoelace formula.
func (c Contour) Area() float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(c[i].X*c[j].Y - c[j].X*c[i].Y)
	}
	return math.Abs(sum) / 2
}

// Perimeter computes the closed arc length of the contour.
func (c Contour) Perimeter() float64 {
	n := len(c)
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		dx := float64(c[j].X - c[i].X)
		dy := float64(c[j].Y - c[i].Y)
		sum += math.Hypot(dx, dy)
	}
	return sum
}

// BoundingRect returns the axis-aligned bounding rectangle of the contour.
func (c Contour) BoundingRect() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0].Add(image.Point{1, 1})}
	for _, p := range c[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X >= r.Max.X {
			r.Max.X = p.X + 1
		}
		if p.Y >= r.Max.Y {
			r.Max.Y = p.Y + 1
		}
	}
	return r
}

// Circularity returns 4*pi*area / perimeter^2; 1.0 for a perfect circle.
func (c Contour) Circularity() float64 {
	p := c.Perimeter()
	if p == 0 {
		return 0
	}
	return 4 * math.Pi * c.Area() / (p * p)
}

// FindExternalContours traces the boundaries of dark regions in a binary
// image (foreground = pixels below the threshold). Traces start only at
// pixels with background to their west, so each boundary is walked once.
func FindExternalContours(binary *image.Gray, threshold uint8) []Contour {
	bounds := binary.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	isFG := func(x, y int) bool {
		if x < 0 || y < 0 || x >= width || y >= height {
			return false
		}
		return binary.Pix[y*binary.Stride+x] < threshold
	}

	visited := make([]bool, width*height)
	var contours []Contour

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !isFG(x, y) || visited[y*width+x] {
				continue
			}
			// Interior pixels never start a trace.
			if isFG(x-1, y) {
				visited[y*width+x] = true
				continue
			}
			contour := traceBoundary(isFG, x, y)
			for _, p := range contour {
				visited[p.Y*width+p.X] = true
			}
			if len(contour) >= 4 {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// traceBoundary walks the boundary clockwise with Moore neighbourhood
// tracing, starting at a left-edge pixel of the region.
func traceBoundary(isFG func(x, y int) bool, startX, startY int) Contour {
	// 8-neighbourhood in clockwise order starting East.
	dirs := [8]image.Point{
		{1, 0}, {1, 1}, {0, 1}, {-1, 1},
		{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	}

	start := image.Point{X: startX, Y: startY}
	contour := Contour{start}

	cur := start
	prevDir := 4 // entered heading East, so the backtrack points West

	for {
		found := false
		for i := 1; i <= 8; i++ {
			d := (prevDir + i) % 8
			next := cur.Add(dirs[d])
			if isFG(next.X, next.Y) {
				cur = next
				prevDir = (d + 4) % 8
				found = true
				break
			}
		}
		if !found {
			// Isolated pixel.
			break
		}
		if cur == start {
			break
		}
		contour = append(contour, cur)
		if len(contour) > 200000 {
			break
		}
	}
	return contour
}
