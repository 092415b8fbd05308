package geometry

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/mat"

	"go-omr-grader/pkg/imgutil"
)

// Homography is a 3x3 projective transform in row-major order with the
// bottom-right element fixed at 1.
type Homography struct {
	h [8]float64
}

// ComputeHomography solves for the projective transform mapping the four
// src points onto the four dst points.
func ComputeHomography(src, dst []Point2D) (*Homography, error) {
	if len(src) != 4 || len(dst) != 4 {
		return nil, fmt.Errorf("homography needs exactly 4 point pairs, got %d/%d", len(src), len(dst))
	}

	// Each correspondence contributes two rows:
	//   x' = (h0*x + h1*y + h2) / (h6*x + h7*y + 1)
	//   y' = (h3*x + h4*y + h5) / (h6*x + h7*y + 1)
	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -xp*x)
		A.Set(i*2, 7, -xp*y)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -yp*x)
		A.Set(i*2+1, 7, -yp*y)
		B.SetVec(i*2+1, yp)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return nil, fmt.Errorf("degenerate corner configuration: %w", err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h.h[i] = params.AtVec(i)
	}
	return &h, nil
}

// Apply maps a point through the transform.
func (h *Homography) Apply(p Point2D) Point2D {
	w := h.h[6]*p.X + h.h[7]*p.Y + 1
	if w == 0 {
		return Point2D{}
	}
	return Point2D{
		X: (h.h[0]*p.X + h.h[1]*p.Y + h.h[2]) / w,
		Y: (h.h[3]*p.X + h.h[4]*p.Y + h.h[5]) / w,
	}
}

// WarpPerspective renders the quadrilateral described by the inverse
// transform into a width x height grayscale image using inverse mapping
// with bilinear sampling. inverse must map destination coordinates onto
// source coordinates.
func WarpPerspective(src *image.Gray, inverse *Homography, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	bounds := src.Bounds()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			s := inverse.Apply(Point2D{X: float64(x), Y: float64(y)})
			dst.Pix[y*dst.Stride+x] = bilinearSample(src, bounds, s.X, s.Y)
		}
	}
	return dst
}

func bilinearSample(src *image.Gray, bounds image.Rectangle, x, y float64) uint8 {
	x0 := int(x)
	y0 := int(y)
	if x < 0 || y < 0 || x0 >= bounds.Dx() || y0 >= bounds.Dy() {
		return 255 // outside the page reads as paper white
	}

	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= bounds.Dx() {
		x1 = x0
	}
	if y1 >= bounds.Dy() {
		y1 = y0
	}

	fx := x - float64(x0)
	fy := y - float64(y0)

	tl := float64(src.Pix[y0*src.Stride+x0])
	tr := float64(src.Pix[y0*src.Stride+x1])
	bl := float64(src.Pix[y1*src.Stride+x0])
	br := float64(src.Pix[y1*src.Stride+x1])

	top := tl + (tr-tl)*fx
	bottom := bl + (br-bl)*fx
	return imgutil.ClampUint8(top + (bottom-top)*fy)
}
