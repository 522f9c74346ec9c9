package extractor

import "github.com/contactsleuth/contactsleuth/internal/model"

// Aggregate merges raw facts into one entry per (type, value) pair, keeping
// the maximum confidence among contributors and the source URL of the
// winning fact. Output order is unspecified.
//
// The grouping key is exact string equality, case-sensitive: "Jane Doe" and
// "jane doe" stay separate entries. This under-merges near-duplicates and
// stands as a documented policy; max-merge is commutative and associative,
// so fact arrival order never changes the result.
func Aggregate(facts []model.Fact) []model.AggregatedFact {
	merged := make(map[string]model.AggregatedFact, len(facts))

	for _, f := range facts {
		key := f.Key()
		existing, ok := merged[key]
		if !ok || f.Confidence > existing.Confidence {
			merged[key] = model.AggregatedFact{
				Type:       f.Type,
				Value:      f.Value,
				Confidence: f.Confidence,
				SourceURL:  f.SourceURL,
			}
		}
	}

	out := make([]model.AggregatedFact, 0, len(merged))
	for _, af := range merged {
		out = append(out, af)
	}
	return out
}
