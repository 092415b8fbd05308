// Package answerkey models correct-answer data for an exam, keyed by
// question set. A key carries one answer per question plus special cases
// where several options are accepted.
package answerkey

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SpecialCase widens the accepted answers for one question.
type SpecialCase struct {
	AcceptedAnswers []string `json:"acceptedAnswers"`
	Reason          string   `json:"reason,omitempty"`
}

// Key holds the correct answers for one question set.
type Key struct {
	Set          string                 `json:"set"`
	RawAnswers   []string               `json:"rawAnswers"`
	SpecialCases map[string]SpecialCase `json:"specialCases,omitempty"`
}

// KeySet maps set identifiers (setA, setB, ...) to their keys.
type KeySet map[string]*Key

// Load reads a key set from JSON shaped as
// {"setA": {"rawAnswers": [...], "specialCases": {...}}, ...}.
func Load(r io.Reader) (KeySet, error) {
	var raw map[string]*Key
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode answer keys: %w", err)
	}
	ks := make(KeySet, len(raw))
	for set, key := range raw {
		if key == nil {
			return nil, fmt.Errorf("answer key %q is null", set)
		}
		key.Set = set
		ks[set] = key
	}
	return ks, nil
}

// LoadFile reads a key set from a JSON file on disk.
func LoadFile(path string) (KeySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open answer keys file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ForSet resolves the key for a set identifier. Both "A" and "setA" forms
// are accepted.
func (ks KeySet) ForSet(set string) (*Key, error) {
	if key, ok := ks[set]; ok {
		return key, nil
	}
	if key, ok := ks["set"+strings.ToUpper(set)]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("no answer key for set %q", set)
}

// Validate checks the key covers exactly totalQuestions questions and that
// every answer and special case is well formed.
func (k *Key) Validate(totalQuestions int) error {
	if len(k.RawAnswers) != totalQuestions {
		return fmt.Errorf("answer key %q: expected %d answers, got %d",
			k.Set, totalQuestions, len(k.RawAnswers))
	}
	for i, ans := range k.RawAnswers {
		if strings.TrimSpace(ans) == "" {
			return fmt.Errorf("answer key %q: question %d has an empty answer", k.Set, i+1)
		}
	}
	for q, sc := range k.SpecialCases {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > totalQuestions {
			return fmt.Errorf("answer key %q: special case question %q out of range 1..%d",
				k.Set, q, totalQuestions)
		}
		if len(sc.AcceptedAnswers) == 0 {
			return fmt.Errorf("answer key %q: special case for question %s has no accepted answers",
				k.Set, q)
		}
	}
	return nil
}

// AcceptedFor returns the accepted answers for a question, lower-cased and
// trimmed. Special cases override the raw answer. Questions outside the key
// return nil.
func (k *Key) AcceptedFor(question int) []string {
	if sc, ok := k.SpecialCases[strconv.Itoa(question)]; ok {
		return normalize(sc.AcceptedAnswers)
	}
	if question < 1 || question > len(k.RawAnswers) {
		return nil
	}
	return normalize([]string{k.RawAnswers[question-1]})
}

// IsSpecialCase reports whether a question accepts multiple answers.
func (k *Key) IsSpecialCase(question int) bool {
	_, ok := k.SpecialCases[strconv.Itoa(question)]
	return ok
}

func normalize(answers []string) []string {
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}
