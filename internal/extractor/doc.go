// Package extractor holds the contact-fact extraction strategies, the
// registry that coordinates them, and the aggregator that merges their
// overlapping output into a deduplicated, confidence-ranked result set.
//
// Each strategy is independent: it consumes plain text (or, for the
// contextual strategy, the page HTML), reports zero or more facts with a
// confidence score, and never lets a failure escape its own boundary.
package extractor
