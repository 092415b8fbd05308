// Package imgutil provides small image helpers shared by the processing
// stages: grayscale conversion, clamping, blending and region math.
package imgutil

import (
	"image"
	"image/color"
	"image/draw"
)

// ToGray converts any image to 8-bit grayscale using the standard library
// luminance model. Gray input is cloned so callers can mutate the result.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return CloneGray(g)
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// CloneGray returns a deep copy of a grayscale image.
func CloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// IsGrayscale reports whether the image carries no color information.
func IsGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampUint8 clamps v to the [0, 255] byte range.
func ClampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// BlendGray mixes two grayscale images of equal size: alpha*a + (1-alpha)*b.
// Mismatched sizes return a unchanged.
func BlendGray(a, b *image.Gray, alpha float64) *image.Gray {
	if !a.Bounds().Eq(b.Bounds()) {
		return a
	}
	out := image.NewGray(a.Bounds())
	for i := range a.Pix {
		out.Pix[i] = ClampUint8(alpha*float64(a.Pix[i]) + (1-alpha)*float64(b.Pix[i]))
	}
	return out
}

// SubGray extracts a sub-region as an independent grayscale image. The
// region is intersected with the image bounds first; an empty intersection
// yields a zero-size image.
func SubGray(src *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			dst.SetGray(x, y, src.GrayAt(r.Min.X+x, r.Min.Y+y))
		}
	}
	return dst
}

// Histogram computes the 256-bin intensity histogram of a grayscale image.
func Histogram(gray *image.Gray) [256]int {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[(y-bounds.Min.Y)*gray.Stride : (y-bounds.Min.Y)*gray.Stride+bounds.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// EqualizeGray applies global histogram equalization.
func EqualizeGray(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return CloneGray(gray)
	}

	hist := Histogram(gray)
	cdfMin := 0
	for _, count := range hist {
		if count > 0 {
			cdfMin = count
			break
		}
	}
	// A single-intensity image has no contrast to spread; mapping it through
	// the LUT would collapse every pixel to zero.
	if cdfMin == total {
		return CloneGray(gray)
	}

	var lut [256]uint8
	cdf := 0
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		if cdf >= cdfMin {
			lut[i] = ClampUint8(float64(cdf-cdfMin) / float64(total-cdfMin) * 255)
		}
	}

	out := image.NewGray(bounds)
	for i, v := range gray.Pix {
		out.Pix[i] = lut[v]
	}
	return out
}

// FillRatio returns the fraction of pixels darker than the threshold within
// the whole image. Empty images count as zero.
func FillRatio(gray *image.Gray, threshold uint8) float64 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	dark := 0
	for _, v := range gray.Pix {
		if v < threshold {
			dark++
		}
	}
	return float64(dark) / float64(total)
}

// MeanGray returns the average intensity of a grayscale image.
func MeanGray(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	var sum float64
	for _, v := range gray.Pix {
		sum += float64(v)
	}
	return sum / float64(total)
}

// GrayToRGBA re-wraps a grayscale image in an RGBA buffer. Used when a
// downstream consumer needs a color image type.
func GrayToRGBA(gray *image.Gray) *image.RGBA {
	bounds := gray.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := gray.GrayAt(x, y).Y
			out.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
