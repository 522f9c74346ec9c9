// Package model defines the core data types shared across the crawler,
// the extraction strategies, and the report writers: candidate URLs,
// fetch outcomes, extracted contact facts, and per-seed crawl reports.
package model
