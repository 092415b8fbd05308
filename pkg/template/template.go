// Package template models the layout of an OMR answer sheet: where each
// question's bubbles sit on the page, the alignment reference points and
// the regions that carry the question-set indicator.
package template

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
)

// Region is an axis-aligned rectangle serialized as an [x, y, width, height]
// 4-tuple.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MarshalJSON encodes the region as a 4-element array.
func (r Region) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.X, r.Y, r.Width, r.Height})
}

// UnmarshalJSON decodes an [x, y, width, height] array.
func (r *Region) UnmarshalJSON(data []byte) error {
	var tuple [4]int
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("region must be an [x, y, width, height] array: %w", err)
	}
	r.X, r.Y, r.Width, r.Height = tuple[0], tuple[1], tuple[2], tuple[3]
	return nil
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Point is a page coordinate serialized as an [x, y] pair.
type Point struct {
	X int
	Y int
}

// MarshalJSON encodes the point as a 2-element array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes an [x, y] array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("point must be an [x, y] array: %w", err)
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// Bubble places one answer option on the page.
type Bubble struct {
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OptionLetter   string `json:"option_letter"`
	QuestionNumber int    `json:"question_number"`
}

// Rect converts the bubble footprint to an image.Rectangle.
func (b Bubble) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Question groups the bubbles of one question with its enclosing region.
type Question struct {
	QuestionNumber  int      `json:"question_number"`
	Bubbles         []Bubble `json:"bubbles"`
	RegionBounds    Region   `json:"region_bounds"`
	ExpectedAnswers int      `json:"expected_answers"`
}

// Template is a complete sheet layout.
type Template struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	TotalQuestions     int               `json:"total_questions"`
	QuestionsPerPage   int               `json:"questions_per_page"`
	OptionsPerQuestion int               `json:"options_per_question"`
	PageDimensions     Point             `json:"page_dimensions"`
	Questions          []Question        `json:"questions"`
	ReferencePoints    []Point           `json:"reference_points"`
	SetIndicators      map[string]Region `json:"set_indicators"`
}

// Load reads a template from JSON.
func Load(r io.Reader) (*Template, error) {
	var t Template
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a template from a JSON file on disk.
func LoadFile(path string) (*Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes the template as indented JSON.
func (t *Template) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Validate checks structural consistency. A template that fails validation
// is a configuration error and must not enter the pipeline.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name must not be empty")
	}
	if t.TotalQuestions <= 0 {
		return fmt.Errorf("template %q: total_questions must be > 0 (got %d)", t.Name, t.TotalQuestions)
	}
	if len(t.Questions) != t.TotalQuestions {
		return fmt.Errorf("template %q: total_questions=%d but %d questions defined",
			t.Name, t.TotalQuestions, len(t.Questions))
	}
	if t.PageDimensions.X <= 0 || t.PageDimensions.Y <= 0 {
		return fmt.Errorf("template %q: page dimensions must be positive (got %dx%d)",
			t.Name, t.PageDimensions.X, t.PageDimensions.Y)
	}
	for _, q := range t.Questions {
		if q.QuestionNumber < 1 || q.QuestionNumber > t.TotalQuestions {
			return fmt.Errorf("template %q: question number %d out of range 1..%d",
				t.Name, q.QuestionNumber, t.TotalQuestions)
		}
		if len(q.Bubbles) == 0 {
			return fmt.Errorf("template %q: question %d has no bubbles", t.Name, q.QuestionNumber)
		}
		if q.RegionBounds.Width <= 0 || q.RegionBounds.Height <= 0 {
			return fmt.Errorf("template %q: question %d has a degenerate region", t.Name, q.QuestionNumber)
		}
		for _, b := range q.Bubbles {
			if b.Width <= 0 || b.Height <= 0 {
				return fmt.Errorf("template %q: question %d option %q has a degenerate bubble",
					t.Name, q.QuestionNumber, b.OptionLetter)
			}
			if b.OptionLetter == "" {
				return fmt.Errorf("template %q: question %d has a bubble without an option letter",
					t.Name, q.QuestionNumber)
			}
		}
	}
	return nil
}

// QuestionByNumber returns the layout for one question, or nil if absent.
func (t *Template) QuestionByNumber(n int) *Question {
	for i := range t.Questions {
		if t.Questions[i].QuestionNumber == n {
			return &t.Questions[i]
		}
	}
	return nil
}
