package extractor

import (
	"regexp"
	"strings"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// phonePattern is a loose matcher tolerant of international prefixes and
// the usual separator styles: +1 (555) 123-4567, 555.123.4567, 5551234567.
var phonePattern = regexp.MustCompile(`\+?\d{0,3}[\s.\-]?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)

const defaultPhoneConfidence = 0.5

// PhoneExtractor finds phone numbers in plain text.
type PhoneExtractor struct{}

// NewPhoneExtractor creates a PhoneExtractor.
func NewPhoneExtractor() *PhoneExtractor {
	return &PhoneExtractor{}
}

// Name returns the strategy name.
func (e *PhoneExtractor) Name() string {
	return "phone"
}

// Extract reports candidate phone numbers with confidence 0.5.
func (e *PhoneExtractor) Extract(text string) []model.Fact {
	matches := phonePattern.FindAllString(text, -1)
	facts := make([]model.Fact, 0, len(matches))
	for _, m := range matches {
		value := strings.TrimSpace(m)
		// A bare 7+ digit run with no separators is more likely an ID
		// or a timestamp than a phone number.
		if !strings.ContainsAny(value, "+().- ") && len(value) < 10 {
			continue
		}
		facts = append(facts, model.Fact{
			Type:       model.FactPhone,
			Value:      value,
			Confidence: defaultPhoneConfidence,
		})
	}
	return facts
}
