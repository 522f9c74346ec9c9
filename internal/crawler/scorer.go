package crawler

import (
	"net/url"
	"strings"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// relevantKeywords marks URL paths and anchor texts that typically lead to
// pages naming people: about/team/contact/careers style pages.
var relevantKeywords = []string{
	"our-story", "join-us", "company-info", "about-company", "employees",
	"get-in-touch", "people", "divisions", "team", "board", "contact-us",
	"directors", "leadership", "about-team", "history", "social",
	"departments", "news", "reach-us", "offices", "executives", "work-with-us",
	"awards", "directory", "company", "what-we-do", "media", "careers",
	"meet-the-team", "press", "corporate", "insights", "staff", "publications",
	"events", "blog", "support", "founder", "who-we-are", "management",
	"about-us", "mission", "locations", "values", "help", "our-team", "contact",
}

// nonDocumentExtensions are URL suffixes that never contain crawlable HTML.
var nonDocumentExtensions = []string{
	".json", ".css", ".png", ".jpg", ".jpeg", ".svg", ".ico", ".js",
	".gif", ".pdf", ".xml", ".zip", ".mp4", ".webp", ".woff", ".woff2",
}

// LinkScorer turns a parsed page's anchors into scored crawl candidates.
// Targets outside the seed domain and non-document targets are discarded;
// survivors are scored for contact-page relevance and anything scoring zero
// or below is dropped before it ever reaches the frontier.
type LinkScorer struct {
	keywords []string
}

// NewLinkScorer creates a LinkScorer with the default keyword list.
func NewLinkScorer() *LinkScorer {
	return &LinkScorer{keywords: relevantKeywords}
}

// Score produces frontier candidates from a page's anchors. seedDomain is
// the crawl's domain; parentDepth is the depth of the page the anchors came
// from. Candidate priority is 100 minus the relevance score, so more
// relevant links pop first.
func (s *LinkScorer) Score(doc *Document, seedDomain string, parentDepth int) []model.CandidateURL {
	candidates := make([]model.CandidateURL, 0, len(doc.Anchors))

	for _, a := range doc.Anchors {
		u, err := url.Parse(a.URL)
		if err != nil {
			continue
		}
		domain := strings.ToLower(u.Hostname())
		if domain != seedDomain {
			continue
		}
		if isNonDocument(u.Path) {
			continue
		}

		score := s.relevance(u.Path, a.Text)
		if score <= 0 {
			continue
		}

		candidates = append(candidates, model.CandidateURL{
			URL:      a.URL,
			Depth:    parentDepth + 1,
			Priority: 100 - score,
			Domain:   domain,
		})
	}

	return candidates
}

// relevance computes the contact-page relevance score for one link:
// +5 for a keyword in the URL path, +3 for a keyword in the anchor text,
// and up to +3 for shallow paths.
func (s *LinkScorer) relevance(path, anchorText string) int {
	score := 0

	path = strings.ToLower(path)
	for _, kw := range s.keywords {
		if strings.Contains(path, kw) {
			score += 5
			break
		}
	}

	anchorText = strings.ToLower(anchorText)
	for _, kw := range s.keywords {
		if strings.Contains(anchorText, kw) {
			score += 3
			break
		}
	}

	if depth := strings.Count(path, "/"); depth < 3 {
		score += 3 - depth
	}

	return score
}

// isNonDocument reports whether a path names a known binary/style/script
// resource.
func isNonDocument(path string) bool {
	path = strings.ToLower(path)
	for _, ext := range nonDocumentExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
