package template

import "fmt"

// gridSpec captures the geometry shared by the built-in layouts.
type gridSpec struct {
	name          string
	description   string
	columns       int
	rowsPerColumn int
	options       int
	pageWidth     int
	pageHeight    int
	marginX       int
	marginY       int
	bubbleSize    int
	bubbleSpacing int
	numberGutter  int
	refInset      int
}

// Standard100Q builds the standard 100-question layout: A4 at 300 DPI,
// four columns of 25 rows, four options per question.
func Standard100Q() *Template {
	return buildGrid(gridSpec{
		name:          "standard_100q",
		description:   "Standard 100-question OMR sheet (4 columns, 25 rows)",
		columns:       4,
		rowsPerColumn: 25,
		options:       4,
		pageWidth:     2480,
		pageHeight:    3508,
		marginX:       200,
		marginY:       400,
		bubbleSize:    30,
		bubbleSpacing: 40,
		numberGutter:  60,
		refInset:      100,
	})
}

// Compact50Q builds a denser 50-question layout: two columns of 25 rows.
func Compact50Q() *Template {
	return buildGrid(gridSpec{
		name:          "compact_50q",
		description:   "Compact 50-question OMR sheet (2 columns, 25 rows)",
		columns:       2,
		rowsPerColumn: 25,
		options:       4,
		pageWidth:     2480,
		pageHeight:    3508,
		marginX:       300,
		marginY:       500,
		bubbleSize:    35,
		bubbleSpacing: 50,
		numberGutter:  80,
		refInset:      150,
	})
}

// ByName resolves a built-in layout by its template name.
func ByName(name string) (*Template, error) {
	switch name {
	case "", "standard_100q":
		return Standard100Q(), nil
	case "compact_50q":
		return Compact50Q(), nil
	default:
		return nil, fmt.Errorf("unknown template %q", name)
	}
}

func buildGrid(spec gridSpec) *Template {
	columnWidth := (spec.pageWidth - 2*spec.marginX) / spec.columns
	rowHeight := (spec.pageHeight - 2*spec.marginY) / spec.rowsPerColumn

	total := spec.columns * spec.rowsPerColumn
	questions := make([]Question, 0, total)

	for col := 0; col < spec.columns; col++ {
		for row := 0; row < spec.rowsPerColumn; row++ {
			num := col*spec.rowsPerColumn + row + 1

			regionX := spec.marginX + col*columnWidth
			regionY := spec.marginY + row*rowHeight
			regionW := columnWidth - 20
			regionH := rowHeight - 10

			bubbleStartX := regionX + spec.numberGutter
			bubbleY := regionY + (regionH-spec.bubbleSize)/2

			bubbles := make([]Bubble, 0, spec.options)
			for opt := 0; opt < spec.options; opt++ {
				bubbles = append(bubbles, Bubble{
					X:              bubbleStartX + opt*spec.bubbleSpacing,
					Y:              bubbleY,
					Width:          spec.bubbleSize,
					Height:         spec.bubbleSize,
					OptionLetter:   string(rune('a' + opt)),
					QuestionNumber: num,
				})
			}

			questions = append(questions, Question{
				QuestionNumber:  num,
				Bubbles:         bubbles,
				RegionBounds:    Region{X: regionX, Y: regionY, Width: regionW, Height: regionH},
				ExpectedAnswers: 1,
			})
		}
	}

	inset := spec.refInset
	refPoints := []Point{
		{X: inset, Y: inset},
		{X: spec.pageWidth - inset, Y: inset},
		{X: spec.pageWidth - inset, Y: spec.pageHeight - inset},
		{X: inset, Y: spec.pageHeight - inset},
	}

	indicatorW := 2 * inset
	indicatorH := inset / 2
	setIndicators := map[string]Region{
		"A": {X: spec.pageWidth/2 - inset, Y: 2 * inset, Width: indicatorW, Height: indicatorH},
		"B": {X: spec.pageWidth/2 + inset, Y: 2 * inset, Width: indicatorW, Height: indicatorH},
	}

	return &Template{
		Name:               spec.name,
		Description:        spec.description,
		TotalQuestions:     total,
		QuestionsPerPage:   total,
		OptionsPerQuestion: spec.options,
		PageDimensions:     Point{X: spec.pageWidth, Y: spec.pageHeight},
		Questions:          questions,
		ReferencePoints:    refPoints,
		SetIndicators:      setIndicators,
	}
}
