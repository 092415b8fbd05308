package template

import (
	"bytes"
	"testing"
)

func TestStandard100QGeometry(t *testing.T) {
	tpl := Standard100Q()

	if err := tpl.Validate(); err != nil {
		t.Fatalf("Standard100Q failed validation: %v", err)
	}
	if tpl.TotalQuestions != 100 {
		t.Errorf("TotalQuestions = %d, want 100", tpl.TotalQuestions)
	}
	if tpl.PageDimensions.X != 2480 || tpl.PageDimensions.Y != 3508 {
		t.Errorf("PageDimensions = %v, want 2480x3508", tpl.PageDimensions)
	}
	if len(tpl.ReferencePoints) != 4 {
		t.Errorf("ReferencePoints count = %d, want 4", len(tpl.ReferencePoints))
	}
	if len(tpl.SetIndicators) != 2 {
		t.Errorf("SetIndicators count = %d, want 2", len(tpl.SetIndicators))
	}

	for _, q := range tpl.Questions {
		if len(q.Bubbles) != 4 {
			t.Fatalf("question %d has %d bubbles, want 4", q.QuestionNumber, len(q.Bubbles))
		}
		letters := []string{"a", "b", "c", "d"}
		for i, b := range q.Bubbles {
			if b.OptionLetter != letters[i] {
				t.Fatalf("question %d bubble %d letter = %q, want %q",
					q.QuestionNumber, i, b.OptionLetter, letters[i])
			}
			if !b.Rect().In(tpl.QuestionByNumber(q.QuestionNumber).RegionBounds.Rect().Inset(-60)) {
				t.Fatalf("question %d bubble %q outside its padded region", q.QuestionNumber, b.OptionLetter)
			}
		}
	}
}

func TestCompact50Q(t *testing.T) {
	tpl := Compact50Q()
	if err := tpl.Validate(); err != nil {
		t.Fatalf("Compact50Q failed validation: %v", err)
	}
	if tpl.TotalQuestions != 50 {
		t.Errorf("TotalQuestions = %d, want 50", tpl.TotalQuestions)
	}
}

func TestByName(t *testing.T) {
	if tpl, err := ByName(""); err != nil || tpl.Name != "standard_100q" {
		t.Errorf("ByName(\"\") = %v, %v; want standard_100q", tpl, err)
	}
	if _, err := ByName("no_such_layout"); err == nil {
		t.Error("ByName with unknown name should fail")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tpl := Standard100Q()

	var buf bytes.Buffer
	if err := tpl.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Name != tpl.Name || got.TotalQuestions != tpl.TotalQuestions {
		t.Errorf("round trip changed identity: got %s/%d", got.Name, got.TotalQuestions)
	}
	q42 := got.QuestionByNumber(42)
	if q42 == nil {
		t.Fatal("question 42 missing after round trip")
	}
	want := tpl.QuestionByNumber(42)
	if q42.RegionBounds != want.RegionBounds {
		t.Errorf("question 42 region = %+v, want %+v", q42.RegionBounds, want.RegionBounds)
	}
}

func TestValidateRejectsBrokenTemplates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Template)
	}{
		{"empty name", func(tpl *Template) { tpl.Name = "" }},
		{"count mismatch", func(tpl *Template) { tpl.TotalQuestions = 99 }},
		{"zero page", func(tpl *Template) { tpl.PageDimensions = Point{} }},
		{"no bubbles", func(tpl *Template) { tpl.Questions[0].Bubbles = nil }},
		{"degenerate region", func(tpl *Template) { tpl.Questions[3].RegionBounds.Width = 0 }},
		{"degenerate bubble", func(tpl *Template) { tpl.Questions[5].Bubbles[1].Height = 0 }},
		{"missing letter", func(tpl *Template) { tpl.Questions[7].Bubbles[0].OptionLetter = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := Standard100Q()
			tc.mutate(tpl)
			if err := tpl.Validate(); err == nil {
				t.Errorf("Validate should fail for %s", tc.name)
			}
		})
	}
}
