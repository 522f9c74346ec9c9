package extractor

import (
	"regexp"
	"strings"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// namePattern matches sequences of two or more title-cased words, with an
// optional honorific prefix. Heuristic by nature: "Privacy Policy" looks
// like a name to a regex, so a stop list filters the worst offenders.
var namePattern = regexp.MustCompile(`\b(?:Dr\.|Mr\.|Ms\.|Mrs\.|Prof\.)?\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)

// nameStopWords are leading tokens that mark a match as boilerplate rather
// than a person.
var nameStopWords = map[string]bool{
	"Email":   true,
	"Contact": true,
	"Privacy": true,
	"Terms":   true,
	"About":   true,
	"Our":     true,
	"The":     true,
}

// defaultNameConfidence is deliberately low: a capitalized-word heuristic is
// far weaker evidence than structured markup, which reports names at 0.9+.
const defaultNameConfidence = 0.5

// NameExtractor finds person names via a capitalized-word-sequence
// heuristic.
type NameExtractor struct{}

// NewNameExtractor creates a NameExtractor.
func NewNameExtractor() *NameExtractor {
	return &NameExtractor{}
}

// Name returns the strategy name.
func (e *NameExtractor) Name() string {
	return "name"
}

// Extract reports candidate names with confidence 0.5.
func (e *NameExtractor) Extract(text string) []model.Fact {
	matches := namePattern.FindAllStringSubmatch(text, -1)
	facts := make([]model.Fact, 0, len(matches))
	for _, m := range matches {
		candidate := strings.TrimSpace(m[1])
		first, _, _ := strings.Cut(candidate, " ")
		if nameStopWords[first] {
			continue
		}
		facts = append(facts, model.Fact{
			Type:       model.FactName,
			Value:      candidate,
			Confidence: defaultNameConfidence,
		})
	}
	return facts
}
