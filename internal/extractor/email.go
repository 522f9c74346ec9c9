package extractor

import (
	"regexp"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// emailPattern is an RFC-approximate email matcher. Known limitation: no
// MX or deliverability check; a syntactically valid address is reported
// as-is.
var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

// EmailExtractor finds email addresses in plain text.
type EmailExtractor struct{}

// NewEmailExtractor creates an EmailExtractor.
func NewEmailExtractor() *EmailExtractor {
	return &EmailExtractor{}
}

// Name returns the strategy name.
func (e *EmailExtractor) Name() string {
	return "email"
}

// Extract reports every regex match with confidence 1.0.
func (e *EmailExtractor) Extract(text string) []model.Fact {
	matches := emailPattern.FindAllString(text, -1)
	facts := make([]model.Fact, 0, len(matches))
	for _, m := range matches {
		facts = append(facts, model.Fact{
			Type:       model.FactEmail,
			Value:      m,
			Confidence: 1.0,
		})
	}
	return facts
}
