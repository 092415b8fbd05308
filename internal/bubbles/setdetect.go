package bubbles

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/logger"
	"go-omr-grader/pkg/imgutil"
	"go-omr-grader/pkg/template"
)

// DefaultSet is reported when no indicator region is marked.
const DefaultSet = "A"

// SetDetector identifies which exam set a sheet belongs to by measuring
// how dark each set-indicator region is. The most heavily marked region
// wins.
type SetDetector struct{}

// NewSetDetector creates a set detector.
func NewSetDetector() *SetDetector {
	return &SetDetector{}
}

// Detect returns the set name whose indicator region carries the most ink.
// Sheets with no indicators, or with every indicator blank, default to
// set A. Equally dark indicators resolve to the alphabetically first name
// so repeated runs agree.
func (s *SetDetector) Detect(gray *image.Gray, tpl *template.Template) string {
	names := make([]string, 0, len(tpl.SetIndicators))
	for name := range tpl.SetIndicators {
		names = append(names, name)
	}
	sort.Strings(names)

	best := DefaultSet
	bestRatio := 0.0

	for _, name := range names {
		rect := tpl.SetIndicators[name].Rect().Intersect(gray.Bounds())
		if rect.Empty() {
			continue
		}
		crop := imaging.Crop(gray, rect)
		ratio := imgutil.FillRatio(imgutil.ToGray(crop), darkPixelThreshold)
		if ratio > bestRatio {
			best = name
			bestRatio = ratio
		}
	}

	logger.WithFields(logrus.Fields{
		"set":   best,
		"ratio": bestRatio,
	}).Debug("Exam set detected")
	return best
}
