package bubbles

import (
	"image"
	"image/color"
	"testing"

	"go-omr-grader/pkg/template"
)

func drawDisk(img *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
}

func drawRing(img *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			d := dx*dx + dy*dy
			if d <= r*r && d >= (r-1)*(r-1) {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
}

func TestGridDetectorFindsFilledBubble(t *testing.T) {
	// 400x1000 sheet gives 100x40 cells, comfortable for a radius-10 disk.
	img := blankSheet(400, 1000)
	drawDisk(img, 50, 20, 10)

	g := NewGridDetector(0)
	detections := g.Detect(img)
	if len(detections) != gridColumns*gridRowsPerCol {
		t.Fatalf("got %d detections, want %d", len(detections), gridColumns*gridRowsPerCol)
	}

	q1 := detections[0]
	if q1.QuestionNumber != 1 {
		t.Fatalf("first detection is question %d, want 1", q1.QuestionNumber)
	}
	if len(q1.DetectedOptions) != 1 || q1.DetectedOptions[0] != "a" {
		t.Errorf("question 1 detected %v, want [a]", q1.DetectedOptions)
	}
	if q1.QualityScore <= 0.5 {
		t.Errorf("filled circular bubble scored %v, want > 0.5", q1.QualityScore)
	}
}

func TestGridDetectorIgnoresEmptyBubbleOutline(t *testing.T) {
	img := blankSheet(400, 1000)
	drawRing(img, 50, 20, 10)

	g := NewGridDetector(0)
	detections := g.Detect(img)
	if len(detections[0].DetectedOptions) != 0 {
		t.Errorf("empty outline detected as mark: %v", detections[0].DetectedOptions)
	}
}

func TestGridDetectorLettersLeftToRight(t *testing.T) {
	img := blankSheet(400, 1000)
	// Two filled bubbles in cell 1, the rightmost drawn first.
	drawDisk(img, 80, 20, 10)
	drawDisk(img, 30, 20, 10)

	g := NewGridDetector(0)
	detections := g.Detect(img)

	got := detections[0].DetectedOptions
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("detected %v, want [a b] in left-to-right order", got)
	}
	if !detections[0].IsMultipleSelection {
		t.Error("two marks not flagged as multiple selection")
	}
}

func TestGridDetectorTinyImage(t *testing.T) {
	img := blankSheet(3, 3)
	g := NewGridDetector(0)
	if got := g.Detect(img); got != nil {
		t.Errorf("tiny image yielded detections: %v", got)
	}
}

func TestSetDetectorPicksDarkestIndicator(t *testing.T) {
	tpl := &template.Template{
		SetIndicators: map[string]template.Region{
			"A": {X: 10, Y: 10, Width: 40, Height: 20},
			"B": {X: 60, Y: 10, Width: 40, Height: 20},
		},
	}
	img := blankSheet(200, 100)
	darkenRect(img, tpl.SetIndicators["B"].Rect())

	d := NewSetDetector()
	if got := d.Detect(img, tpl); got != "B" {
		t.Errorf("detected set %q, want B", got)
	}
}

func TestSetDetectorTieBreaksAlphabetically(t *testing.T) {
	tpl := &template.Template{
		SetIndicators: map[string]template.Region{
			"C": {X: 110, Y: 10, Width: 40, Height: 20},
			"B": {X: 60, Y: 10, Width: 40, Height: 20},
		},
	}
	img := blankSheet(200, 100)
	darkenRect(img, tpl.SetIndicators["B"].Rect())
	darkenRect(img, tpl.SetIndicators["C"].Rect())

	d := NewSetDetector()
	for i := 0; i < 20; i++ {
		if got := d.Detect(img, tpl); got != "B" {
			t.Fatalf("equally dark indicators detected as %q, want B", got)
		}
	}
}

func TestSetDetectorDefaultsWhenBlank(t *testing.T) {
	tpl := &template.Template{
		SetIndicators: map[string]template.Region{
			"A": {X: 10, Y: 10, Width: 40, Height: 20},
			"B": {X: 60, Y: 10, Width: 40, Height: 20},
		},
	}
	img := blankSheet(200, 100)

	d := NewSetDetector()
	if got := d.Detect(img, tpl); got != DefaultSet {
		t.Errorf("blank sheet detected set %q, want %q", got, DefaultSet)
	}
}

func TestDetectionContextSwitchesStrategy(t *testing.T) {
	tpl := twoQuestionTemplate()
	ctx := NewDetectionContext(NewTemplateStrategy(NewAnalyzer(0), tpl))
	if ctx.GetCurrentStrategy() != "template_detection" {
		t.Errorf("strategy = %q, want template_detection", ctx.GetCurrentStrategy())
	}

	ctx.SetStrategy(NewGridStrategy(NewGridDetector(0)))
	if ctx.GetCurrentStrategy() != "grid_detection" {
		t.Errorf("strategy = %q, want grid_detection", ctx.GetCurrentStrategy())
	}

	detections := ctx.ExecuteDetection(blankSheet(400, 1000))
	if len(detections) != gridColumns*gridRowsPerCol {
		t.Errorf("grid strategy returned %d detections, want %d",
			len(detections), gridColumns*gridRowsPerCol)
	}
}
