package model

import "fmt"

// FactType identifies the kind of contact information a fact carries.
type FactType string

// Fact types produced by the extraction strategies.
const (
	// FactEmail is an email address.
	FactEmail FactType = "email"

	// FactName is a person's full name.
	FactName FactType = "name"

	// FactPhone is a phone number.
	FactPhone FactType = "phone"

	// FactTitle is a job title.
	FactTitle FactType = "title"

	// FactLinkedIn is a LinkedIn profile URL.
	FactLinkedIn FactType = "linkedin"

	// FactOrganization is a company or organization name.
	FactOrganization FactType = "organization"
)

// String returns the fact type as a string.
func (t FactType) String() string {
	return string(t)
}

// Valid reports whether the fact type is one of the known types.
func (t FactType) Valid() bool {
	switch t {
	case FactEmail, FactName, FactPhone, FactTitle, FactLinkedIn, FactOrganization:
		return true
	}
	return false
}

// Fact is a single piece of contact information reported by one extraction
// strategy for one page. Facts are immutable after creation; the aggregator
// merges them into new AggregatedFact values rather than mutating them.
type Fact struct {
	// Type is the kind of contact information.
	Type FactType `json:"type"`

	// Value is the extracted text, exactly as found.
	Value string `json:"value"`

	// Confidence is the extractor's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// SourceURL is the page the fact was extracted from.
	SourceURL string `json:"source_url"`
}

// Key returns the deduplication key for aggregation.
//
// The key is the exact (type, value) pair with no case folding or whitespace
// normalization. This under-merges near-duplicates ("Jane Doe" vs "jane doe")
// and is a documented policy, not an oversight.
func (f Fact) Key() string {
	return fmt.Sprintf("%s|%s", f.Type, f.Value)
}

// AggregatedFact is the merged view of all facts sharing a (type, value) key
// across the crawl of one seed URL.
type AggregatedFact struct {
	// Type is the kind of contact information.
	Type FactType `json:"type"`

	// Value is the extracted text.
	Value string `json:"value"`

	// Confidence is the maximum confidence among contributing facts.
	Confidence float64 `json:"confidence"`

	// SourceURL is the page that produced the highest-confidence fact.
	SourceURL string `json:"source_url"`
}
