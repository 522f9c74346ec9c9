package extractor

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// contextKeywords rank page regions by how likely they are to name people.
// A region whose class or id contains a keyword inherits that keyword's
// weight class.
var contextKeywords = map[string][]string{
	"high":   {"about", "team", "contact", "leadership", "management", "staff", "employees", "board", "executives"},
	"medium": {"directory", "people", "department", "faculty", "personnel", "crew", "members", "positions", "roles"},
	"low":    {"company", "organization", "group", "division", "unit", "leaders", "managers"},
}

// weightOrder fixes the precedence when a region's markup matches keywords
// from more than one weight class.
var weightOrder = []string{"high", "medium", "low"}

// weightFactor is the confidence multiplier per weight class. Products are
// capped at 1.0.
var weightFactor = map[string]float64{
	"high":   1.2,
	"medium": 1.1,
	"low":    1.0,
}

// Structured-markup confidences. Both are direct statements by the page
// author rather than pattern guesses, hence near-certain.
const (
	vcardConfidence  = 0.90
	jsonLDConfidence = 0.95
)

// containerSelector lists the elements considered as candidate regions.
const containerSelector = "div, section, article, aside, header, footer"

// ContextualExtractor scans the DOM for regions whose markup suggests
// contact content, re-runs the flat strategies inside those regions with a
// weight-scaled confidence, and separately parses embedded structured
// markup (vCard-classed elements and JSON-LD Person/Organization blocks)
// as a high-confidence direct source.
type ContextualExtractor struct {
	// registry supplies the flat strategies re-run per region.
	registry *Registry
	logger   *slog.Logger
}

// NewContextualExtractor creates a ContextualExtractor over the given
// registry.
func NewContextualExtractor(registry *Registry, logger *slog.Logger) *ContextualExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextualExtractor{registry: registry, logger: logger}
}

// Name returns the strategy name.
func (e *ContextualExtractor) Name() string {
	return "contextual"
}

// Extract treats the input as HTML and extracts weighted-region and
// structured-markup facts. Unparseable input yields zero facts.
func (e *ContextualExtractor) Extract(content string) []model.Fact {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		e.logger.Warn("contextual extractor: unparseable html", "error", err)
		return nil
	}

	var facts []model.Fact
	for _, region := range e.findRegions(doc) {
		facts = append(facts, e.extractFromRegion(region)...)
	}
	facts = append(facts, e.extractVCards(doc)...)
	facts = append(facts, e.extractJSONLD(doc)...)
	return facts
}

// weightedRegion is one DOM region with its weight class.
type weightedRegion struct {
	selection *goquery.Selection
	weight    string
}

// findRegions locates container elements whose class or id contains a
// context keyword, plus the next sibling of any h1-h3 heading mentioning
// one (treated as high weight).
func (e *ContextualExtractor) findRegions(doc *goquery.Document) []weightedRegion {
	var regions []weightedRegion

	doc.Find(containerSelector).Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		marker := strings.ToLower(class + " " + id)
		if marker == " " {
			return
		}
		for _, weight := range weightOrder {
			for _, kw := range contextKeywords[weight] {
				if strings.Contains(marker, kw) {
					regions = append(regions, weightedRegion{selection: s, weight: weight})
					return
				}
			}
		}
	})

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		heading := strings.ToLower(s.Text())
		for _, weight := range weightOrder {
			for _, kw := range contextKeywords[weight] {
				if strings.Contains(heading, kw) {
					if next := s.Next(); next.Length() > 0 {
						regions = append(regions, weightedRegion{selection: next, weight: "high"})
					}
					return
				}
			}
		}
	})

	return regions
}

// extractFromRegion re-runs the flat strategies over one region's text,
// scaling each fact's confidence by the region's weight factor, capped
// at 1.0.
func (e *ContextualExtractor) extractFromRegion(region weightedRegion) []model.Fact {
	text := collapseWhitespace(region.selection.Text())
	if text == "" {
		return nil
	}
	factor := weightFactor[region.weight]

	var facts []model.Fact
	for _, name := range []string{"email", "name", "phone", "title"} {
		strategy := e.registry.Get(name)
		if strategy == nil {
			continue
		}
		for _, f := range safeExtract(strategy, text, e.logger) {
			f.Confidence = min(f.Confidence*factor, 1.0)
			facts = append(facts, f)
		}
	}
	return facts
}

// extractVCards parses hCard-style classed elements.
func (e *ContextualExtractor) extractVCards(doc *goquery.Document) []model.Fact {
	var facts []model.Fact

	doc.Find(".vcard").Each(func(_ int, card *goquery.Selection) {
		fields := []struct {
			class string
			typ   model.FactType
		}{
			{"fn", model.FactName},
			{"org", model.FactOrganization},
			{"email", model.FactEmail},
			{"tel", model.FactPhone},
		}
		for _, field := range fields {
			value := collapseWhitespace(card.Find("." + field.class).First().Text())
			if value == "" {
				continue
			}
			facts = append(facts, model.Fact{
				Type:       field.typ,
				Value:      value,
				Confidence: vcardConfidence,
			})
		}
	})

	return facts
}

// jsonLDEntity is the subset of a JSON-LD block this extractor reads.
type jsonLDEntity struct {
	Type      string `json:"@type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	JobTitle  string `json:"jobTitle"`
}

// extractJSONLD parses application/ld+json script blocks for Person and
// Organization entities. Undecodable blocks are skipped and logged; a
// malformed block never aborts the page.
func (e *ContextualExtractor) extractJSONLD(doc *goquery.Document) []model.Fact {
	var facts []model.Fact

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var entity jsonLDEntity
		if strings.HasPrefix(raw, "[") {
			var list []jsonLDEntity
			if err := json.Unmarshal([]byte(raw), &list); err != nil || len(list) == 0 {
				e.logger.Warn("skipping malformed json-ld block", "error", err)
				return
			}
			entity = list[0]
		} else if err := json.Unmarshal([]byte(raw), &entity); err != nil {
			e.logger.Warn("skipping malformed json-ld block", "error", err)
			return
		}

		switch entity.Type {
		case "Person":
			facts = appendJSONLDFact(facts, model.FactName, entity.Name)
		case "Organization":
			facts = appendJSONLDFact(facts, model.FactOrganization, entity.Name)
		default:
			return
		}
		facts = appendJSONLDFact(facts, model.FactEmail, entity.Email)
		facts = appendJSONLDFact(facts, model.FactPhone, entity.Telephone)
		facts = appendJSONLDFact(facts, model.FactTitle, entity.JobTitle)
	})

	return facts
}

func appendJSONLDFact(facts []model.Fact, typ model.FactType, value string) []model.Fact {
	if value == "" {
		return facts
	}
	return append(facts, model.Fact{Type: typ, Value: value, Confidence: jsonLDConfidence})
}

// collapseWhitespace trims and collapses runs of whitespace.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
