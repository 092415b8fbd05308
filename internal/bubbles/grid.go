package bubbles

import (
	"image"
	"sort"

	"go-omr-grader/internal/geometry"
	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/models"
)

// Grid-heuristic parameters for sheets without a matching template.
const (
	gridColumns      = 4
	gridRowsPerCol   = 25
	gridMaxOptions   = 4
	minBubbleArea    = 200.0
	maxBubbleArea    = 2000.0
	minCircularity   = 0.6
)

// GridDetector locates bubbles without a template by slicing the sheet into
// a fixed question grid and picking circular contours inside each cell.
type GridDetector struct {
	fillThreshold float64
}

// NewGridDetector creates the heuristic detector.
func NewGridDetector(fillThreshold float64) *GridDetector {
	if fillThreshold <= 0 {
		fillThreshold = DefaultFillThreshold
	}
	return &GridDetector{fillThreshold: fillThreshold}
}

// Detect runs the heuristic over the whole sheet. Cells are walked column
// major so question numbering matches the printed layout.
func (g *GridDetector) Detect(gray *image.Gray) []models.BubbleDetection {
	bounds := gray.Bounds()
	cellW := bounds.Dx() / gridColumns
	cellH := bounds.Dy() / gridRowsPerCol
	if cellW == 0 || cellH == 0 {
		return nil
	}

	detections := make([]models.BubbleDetection, 0, gridColumns*gridRowsPerCol)
	for col := 0; col < gridColumns; col++ {
		for row := 0; row < gridRowsPerCol; row++ {
			num := col*gridRowsPerCol + row + 1
			cell := image.Rect(
				bounds.Min.X+col*cellW,
				bounds.Min.Y+row*cellH,
				bounds.Min.X+(col+1)*cellW,
				bounds.Min.Y+(row+1)*cellH,
			)
			detections = append(detections, g.detectCell(gray, cell, num))
		}
	}
	return detections
}

type bubbleCandidate struct {
	rect        image.Rectangle
	fill        float64
	circularity float64
}

// detectCell finds bubble-shaped contours in one cell and scores their
// fill. Candidates are assigned option letters left to right.
func (g *GridDetector) detectCell(gray *image.Gray, cell image.Rectangle, questionNum int) models.BubbleDetection {
	region := imgutil.SubGray(gray, cell)
	contours := geometry.FindExternalContours(region, darkPixelThreshold)

	var candidates []bubbleCandidate
	for _, c := range contours {
		area := c.Area()
		if area < minBubbleArea || area > maxBubbleArea {
			continue
		}
		circ := c.Circularity()
		if circ < minCircularity {
			continue
		}
		rect := c.BoundingRect()
		fill := imgutil.FillRatio(imgutil.SubGray(region, rect), darkPixelThreshold)
		candidates = append(candidates, bubbleCandidate{
			rect:        rect,
			fill:        fill,
			circularity: circ,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].rect.Min.X < candidates[j].rect.Min.X
	})
	if len(candidates) > gridMaxOptions {
		candidates = candidates[:gridMaxOptions]
	}

	var detected []string
	var confidences []float64
	for i, cand := range candidates {
		if cand.fill >= g.fillThreshold {
			detected = append(detected, string(rune('a'+i)))
			confidences = append(confidences, (cand.fill+cand.circularity)/2)
		}
	}

	return models.BubbleDetection{
		QuestionNumber:      questionNum,
		DetectedOptions:     detected,
		ConfidenceScores:    confidences,
		IsMultipleSelection: len(detected) > 1,
		QualityScore:        meanOrZero(confidences),
	}
}
