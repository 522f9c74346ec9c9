package extractor

import (
	"log/slog"

	"github.com/contactsleuth/contactsleuth/internal/crawler"
	"github.com/contactsleuth/contactsleuth/internal/model"
)

// PageExtractor runs the full strategy pipeline over one fetched page.
//
// Run order: the contextual strategy first (it has the highest average
// confidence and re-runs the flat strategies itself inside weighted
// regions), then the flat strategies over the page text, the metadata
// contents, and each anchor text. mailto: hrefs and LinkedIn profile links
// are promoted to facts directly.
type PageExtractor struct {
	registry   *Registry
	contextual *ContextualExtractor
	logger     *slog.Logger
}

// NewPageExtractor creates a PageExtractor with all built-in strategies
// registered.
func NewPageExtractor(logger *slog.Logger) *PageExtractor {
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	registry.Register(NewEmailExtractor())
	registry.Register(NewNameExtractor())
	registry.Register(NewPhoneExtractor())
	registry.Register(NewTitleExtractor())

	contextual := NewContextualExtractor(registry, logger)
	registry.Register(contextual)

	return &PageExtractor{
		registry:   registry,
		contextual: contextual,
		logger:     logger,
	}
}

// Registry exposes the registered strategies, e.g. for listing them in
// diagnostics.
func (p *PageExtractor) Registry() *Registry {
	return p.registry
}

// ExtractPage produces every fact found on the page, each stamped with the
// page URL as its source. A failing strategy contributes nothing; it never
// aborts the rest of the page.
func (p *PageExtractor) ExtractPage(pageURL string, body []byte, doc *crawler.Document) []model.Fact {
	var facts []model.Fact

	// Contextual strategy works on the raw HTML.
	facts = append(facts, safeExtract(p.contextual, string(body), p.logger)...)

	// Flat strategies work on the page's plain-text views.
	flat := []string{"email", "name", "phone", "title"}
	texts := make([]string, 0, 2+len(doc.MetaContents)+len(doc.Anchors))
	texts = append(texts, doc.Text)
	texts = append(texts, doc.MetaContents...)
	for _, a := range doc.Anchors {
		if a.Text != "" {
			texts = append(texts, a.Text)
		}
	}

	for _, name := range flat {
		strategy := p.registry.Get(name)
		for _, text := range texts {
			facts = append(facts, safeExtract(strategy, text, p.logger)...)
		}
	}

	// A mailto: href is as explicit as email evidence gets.
	for _, addr := range doc.Mailtos {
		facts = append(facts, model.Fact{
			Type:       model.FactEmail,
			Value:      addr,
			Confidence: 1.0,
		})
	}

	for _, profile := range doc.LinkedInProfiles {
		facts = append(facts, model.Fact{
			Type:       model.FactLinkedIn,
			Value:      profile,
			Confidence: 1.0,
		})
	}

	for i := range facts {
		facts[i].SourceURL = pageURL
	}
	return facts
}
