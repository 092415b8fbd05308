package geometry

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func whitePage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func fillRect(img *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// drawFrame draws a dark rectangular outline of the given thickness.
func drawFrame(img *image.Gray, r image.Rectangle, thickness int) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), 0)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), 0)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), 0)
	fillRect(img, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), 0)
}

func TestOrderCornersDeterministic(t *testing.T) {
	want := []Point2D{
		{X: 10, Y: 10},   // TL
		{X: 200, Y: 12},  // TR
		{X: 205, Y: 150}, // BR
		{X: 8, Y: 148},   // BL
	}

	perms := permutations([]Point2D{want[2], want[0], want[3], want[1]})
	for _, p := range perms {
		got := OrderCorners(p)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("OrderCorners(%v) = %v, want %v", p, got, want)
			}
		}
	}
}

func permutations(pts []Point2D) [][]Point2D {
	if len(pts) == 1 {
		return [][]Point2D{{pts[0]}}
	}
	var out [][]Point2D
	for i := range pts {
		rest := make([]Point2D, 0, len(pts)-1)
		rest = append(rest, pts[:i]...)
		rest = append(rest, pts[i+1:]...)
		for _, sub := range permutations(rest) {
			out = append(out, append([]Point2D{pts[i]}, sub...))
		}
	}
	return out
}

func TestContourMetricsOnSquare(t *testing.T) {
	img := whitePage(100, 100)
	fillRect(img, image.Rect(20, 20, 70, 70), 0)

	contours := FindExternalContours(img, 128)
	if len(contours) == 0 {
		t.Fatal("no contours found for a filled square")
	}

	var largest Contour
	for _, c := range contours {
		if c.Area() > largest.Area() {
			largest = c
		}
	}

	// Boundary tracing runs along pixel centers, so a 50x50 block yields a
	// 49x49 outline.
	if math.Abs(largest.Area()-49*49) > 120 {
		t.Errorf("square area = %v, want ~%v", largest.Area(), 49*49)
	}
	if math.Abs(largest.Perimeter()-4*49) > 20 {
		t.Errorf("square perimeter = %v, want ~%v", largest.Perimeter(), 4*49)
	}

	rect := largest.BoundingRect()
	if rect.Min.X != 20 || rect.Min.Y != 20 || rect.Max.X != 70 || rect.Max.Y != 70 {
		t.Errorf("bounding rect = %v, want (20,20)-(70,70)", rect)
	}
}

func TestApproxPolygonRectangle(t *testing.T) {
	img := whitePage(200, 200)
	fillRect(img, image.Rect(30, 40, 170, 160), 0)

	contours := FindExternalContours(img, 128)
	if len(contours) == 0 {
		t.Fatal("no contours found")
	}
	var largest Contour
	for _, c := range contours {
		if c.Area() > largest.Area() {
			largest = c
		}
	}

	approx := ApproxPolygon(largest, 0.02*largest.Perimeter())
	if len(approx) != 4 {
		t.Errorf("rectangle approximated to %d vertices, want 4: %v", len(approx), approx)
	}
}

func TestHomographyMapsCorners(t *testing.T) {
	src := []Point2D{{X: 10, Y: 20}, {X: 110, Y: 25}, {X: 115, Y: 140}, {X: 5, Y: 130}}
	dst := []Point2D{{X: 0, Y: 0}, {X: 99, Y: 0}, {X: 99, Y: 119}, {X: 0, Y: 119}}

	h, err := ComputeHomography(src, dst)
	if err != nil {
		t.Fatalf("ComputeHomography failed: %v", err)
	}

	for i := range src {
		got := h.Apply(src[i])
		if got.Distance(dst[i]) > 1e-6 {
			t.Errorf("corner %d mapped to %v, want %v", i, got, dst[i])
		}
	}
}

func TestHomographyIdentity(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 0, Y: 50}}
	h, err := ComputeHomography(pts, pts)
	if err != nil {
		t.Fatalf("ComputeHomography failed: %v", err)
	}

	probe := Point2D{X: 13.5, Y: 27.25}
	if got := h.Apply(probe); got.Distance(probe) > 1e-6 {
		t.Errorf("identity transform moved %v to %v", probe, got)
	}
}

func TestNormalizeFindsFrameBoundary(t *testing.T) {
	img := whitePage(400, 500)
	drawFrame(img, image.Rect(50, 60, 350, 460), 5)

	n := NewNormalizer()
	out, found := n.Normalize(img)
	if !found {
		t.Fatal("boundary not found in framed page")
	}

	wantW, wantH := 300, 400
	if math.Abs(float64(out.Bounds().Dx()-wantW)) > 4 ||
		math.Abs(float64(out.Bounds().Dy()-wantH)) > 4 {
		t.Errorf("warped size = %dx%d, want ~%dx%d",
			out.Bounds().Dx(), out.Bounds().Dy(), wantW, wantH)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	img := whitePage(400, 500)
	drawFrame(img, image.Rect(50, 60, 350, 460), 5)
	fillRect(img, image.Rect(150, 200, 200, 250), 0)

	n := NewNormalizer()
	once, found := n.Normalize(img)
	if !found {
		t.Fatal("boundary not found on first pass")
	}

	// The warped frame hugs the borders, so a second pass sees the same
	// boundary and reduces to a near-identity warp.
	twice, found := n.Normalize(once)
	if !found {
		t.Fatal("boundary not found on second pass")
	}

	if math.Abs(float64(twice.Bounds().Dx()-once.Bounds().Dx())) > 4 ||
		math.Abs(float64(twice.Bounds().Dy()-once.Bounds().Dy())) > 4 {
		t.Fatalf("second pass changed size: %v vs %v", twice.Bounds(), once.Bounds())
	}
	if diff := math.Abs(meanIntensity(once) - meanIntensity(twice)); diff > 5 {
		t.Errorf("second pass shifted mean intensity by %v", diff)
	}
}

func meanIntensity(img *image.Gray) float64 {
	var sum float64
	for _, v := range img.Pix {
		sum += float64(v)
	}
	return sum / float64(len(img.Pix))
}

func TestNormalizeWithoutBoundaryReturnsInput(t *testing.T) {
	img := whitePage(300, 300)

	n := NewNormalizer()
	out, found := n.Normalize(img)
	if found {
		t.Error("blank page should not yield a boundary")
	}
	if out != img {
		t.Error("input should pass through unchanged when no boundary exists")
	}
}

func TestNormalizeIgnoresSmallShapes(t *testing.T) {
	img := whitePage(300, 300)
	// 50x50 = 2500 px^2, below the boundary area floor.
	fillRect(img, image.Rect(100, 100, 150, 150), 0)

	n := NewNormalizer()
	_, found := n.Normalize(img)
	if found {
		t.Error("small shape should not be treated as the sheet boundary")
	}
}

func TestDetectBoundaryOrdersCorners(t *testing.T) {
	img := whitePage(400, 400)
	drawFrame(img, image.Rect(40, 50, 360, 350), 4)

	n := NewNormalizer()
	corners := n.DetectBoundary(img)
	if corners == nil {
		t.Fatal("boundary not detected")
	}

	tl, tr, br, bl := corners[0], corners[1], corners[2], corners[3]
	if !(tl.X < tr.X && bl.X < br.X && tl.Y < bl.Y && tr.Y < br.Y) {
		t.Errorf("corners not ordered TL,TR,BR,BL: %v", corners)
	}
	if tl.Distance(Point2D{X: 40, Y: 50}) > 4 {
		t.Errorf("top-left corner = %v, want near (40,50)", tl)
	}
}
