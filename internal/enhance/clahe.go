package enhance

import (
	"image"

	"go-omr-grader/pkg/imgutil"
)

// applyCLAHE performs contrast-limited adaptive histogram equalization.
// The image is split into a tile grid, each tile gets a clipped, equalized
// lookup table, and per-pixel values are bilinearly interpolated between
// the four surrounding tile tables to avoid block seams.
func applyCLAHE(gray *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 || tilesX < 1 || tilesY < 1 {
		return imgutil.CloneGray(gray)
	}
	if tilesX > width {
		tilesX = width
	}
	if tilesY > height {
		tilesY = height
	}

	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			r := image.Rect(
				bounds.Min.X+tx*tileW,
				bounds.Min.Y+ty*tileH,
				bounds.Min.X+(tx+1)*tileW,
				bounds.Min.Y+(ty+1)*tileH,
			).Intersect(bounds)
			luts[ty*tilesX+tx] = clippedLUT(gray, r, clipLimit)
		}
	}

	out := image.NewGray(bounds)
	for y := 0; y < height; y++ {
		// Tile-space position of the pixel relative to tile centers.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(fy)
		if fy < 0 {
			fy = 0
			ty0 = 0
		}
		ty1 := ty0 + 1
		if ty1 > tilesY-1 {
			ty1 = tilesY - 1
			ty0 = ty1
		}
		wy := fy - float64(int(fy))

		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(fx)
			if fx < 0 {
				fx = 0
				tx0 = 0
			}
			tx1 := tx0 + 1
			if tx1 > tilesX-1 {
				tx1 = tilesX - 1
				tx0 = tx1
			}
			wx := fx - float64(int(fx))

			v := gray.Pix[y*gray.Stride+x]
			tl := float64(luts[ty0*tilesX+tx0][v])
			tr := float64(luts[ty0*tilesX+tx1][v])
			bl := float64(luts[ty1*tilesX+tx0][v])
			br := float64(luts[ty1*tilesX+tx1][v])

			top := tl + (tr-tl)*wx
			bottom := bl + (br-bl)*wx
			out.Pix[y*out.Stride+x] = imgutil.ClampUint8(top + (bottom-top)*wy)
		}
	}
	return out
}

// clippedLUT builds the equalization lookup table for one tile. Histogram
// bins above clipLimit times the uniform bin height are clipped and the
// excess is redistributed evenly.
func clippedLUT(gray *image.Gray, r image.Rectangle, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	total := r.Dx() * r.Dy()
	if total == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	var hist [256]float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	limit := clipLimit * float64(total) / 256
	if limit < 1 {
		limit = 1
	}
	var excess float64
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	redistribute := excess / 256
	for i := range hist {
		hist[i] += redistribute
	}

	cdf := 0.0
	for i := range hist {
		cdf += hist[i]
		lut[i] = imgutil.ClampUint8(cdf / float64(total) * 255)
	}
	return lut
}
