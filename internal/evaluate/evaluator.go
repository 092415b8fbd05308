// Package evaluate scores detected responses against an answer key with
// subject-wise breakdowns and letter grades.
package evaluate

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/errors"
	"go-omr-grader/internal/logger"
	"go-omr-grader/pkg/answerkey"
	"go-omr-grader/pkg/models"
)

// DefaultSubjects is the subject band order for the standard 100-question
// exam. Each subject covers a contiguous run of questions.
var DefaultSubjects = []string{"Python", "EDA", "SQL", "PowerBI", "Statistics"}

const (
	statusCorrect    = "correct"
	statusIncorrect  = "incorrect"
	statusUnanswered = "unanswered"
)

// Evaluator scores responses against an answer key.
type Evaluator struct {
	subjects []string
}

// NewEvaluator creates an evaluator. A nil subject list uses the default
// five-subject layout.
func NewEvaluator(subjects []string) *Evaluator {
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}
	return &Evaluator{subjects: subjects}
}

// Evaluate scores every question from 1 to totalQuestions. A question with
// no detected marks counts as unanswered and never as correct. Regular
// questions require the marked set to equal the accepted set exactly;
// questions with multiple accepted answers pass when any marked option is
// accepted. Comparison is case insensitive.
func (e *Evaluator) Evaluate(responses map[int][]string, key *answerkey.Key, totalQuestions int) (*models.EvaluationResult, error) {
	if key == nil {
		return nil, errors.NewInputError("answer key is required", nil)
	}
	if err := key.Validate(totalQuestions); err != nil {
		return nil, errors.NewInputError("invalid answer key", err)
	}

	result := &models.EvaluationResult{
		TotalQuestions:  totalQuestions,
		SubjectScores:   make(map[string]models.SubjectScore, len(e.subjects)),
		DetailedResults: make([]models.QuestionResult, 0, totalQuestions),
	}

	subjectCorrect := make(map[string]int, len(e.subjects))
	subjectTotal := make(map[string]int, len(e.subjects))

	for q := 1; q <= totalQuestions; q++ {
		subject := e.subjectFor(q, totalQuestions)
		accepted := key.AcceptedFor(q)
		student := normalizeAnswers(responses[q])

		var status string
		var correct bool
		switch {
		case len(student) == 0:
			status = statusUnanswered
			result.Summary.Unanswered++
		case e.isCorrect(student, accepted, key.IsSpecialCase(q)):
			status = statusCorrect
			correct = true
			result.Summary.Correct++
		default:
			status = statusIncorrect
			result.Summary.Incorrect++
		}

		subjectTotal[subject]++
		if correct {
			subjectCorrect[subject]++
		}

		result.DetailedResults = append(result.DetailedResults, models.QuestionResult{
			QuestionNumber: q,
			Subject:        subject,
			StudentAnswers: student,
			CorrectAnswers: accepted,
			IsCorrect:      correct,
			Status:         status,
		})
	}

	for _, subject := range e.subjects {
		total := subjectTotal[subject]
		if total == 0 {
			continue
		}
		correct := subjectCorrect[subject]
		percentage := float64(correct) / float64(total) * 100
		result.SubjectScores[subject] = models.SubjectScore{
			Correct:    correct,
			Total:      total,
			Percentage: percentage,
			Grade:      LetterGrade(percentage),
		}
	}

	result.TotalScore = float64(result.Summary.Correct) / float64(totalQuestions) * 100

	logger.WithFields(logrus.Fields{
		"set":        key.Set,
		"correct":    result.Summary.Correct,
		"incorrect":  result.Summary.Incorrect,
		"unanswered": result.Summary.Unanswered,
		"score":      result.TotalScore,
	}).Info("Sheet evaluated")

	return result, nil
}

// isCorrect applies the marking rule. Regular questions demand an exact
// match between the marked set and the accepted set. Special cases with
// several accepted answers pass on any overlap.
func (e *Evaluator) isCorrect(student, accepted []string, special bool) bool {
	if special && len(accepted) > 1 {
		return intersects(student, accepted)
	}
	return equalSets(student, accepted)
}

// subjectFor maps a question number onto its subject band. Bands split the
// exam into equal contiguous runs, with any remainder going to the last
// subject.
func (e *Evaluator) subjectFor(questionNum, totalQuestions int) string {
	bandSize := totalQuestions / len(e.subjects)
	if bandSize == 0 {
		return e.subjects[0]
	}
	idx := (questionNum - 1) / bandSize
	if idx >= len(e.subjects) {
		idx = len(e.subjects) - 1
	}
	return e.subjects[idx]
}

// LetterGrade converts a percentage to the exam's letter scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

func normalizeAnswers(answers []string) []string {
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	bs := normalizeAnswers(b)
	for i, v := range normalizeAnswers(a) {
		if v != bs[i] {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, v := range normalizeAnswers(b) {
		set[v] = struct{}{}
	}
	for _, v := range normalizeAnswers(a) {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
